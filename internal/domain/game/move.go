package game

// Move is a requested (from, to) pair.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// MoveRecord is the last applied move, kept for en passant.
type MoveRecord struct {
	Piece Piece  `json:"piece" bson:"piece"`
	From  Square `json:"from" bson:"from"`
	To    Square `json:"to" bson:"to"`
}

// IsDoublePawnAdvance reports whether the record is a pawn moving two rows.
func (m MoveRecord) IsDoublePawnAdvance() bool {
	if m.Piece.Type != Pawn {
		return false
	}
	d := m.To.Row - m.From.Row
	return d == 2 || d == -2
}
