// Package store persists the stemmer/stem/snippet relation and its
// dimension tables, and answers the lookups the retrieval engine needs.
package store

import "time"

// Piece is one indexed score, keyed by its origin path and display name.
type Piece struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Path      string    `gorm:"uniqueIndex:idx_piece_path_name;not null"`
	Name      string    `gorm:"uniqueIndex:idx_piece_path_name;not null"`
}

// Part is one voice line within a piece (including synthetic voices
// produced by the voice splitter).
type Part struct {
	ID      uint   `gorm:"primarykey"`
	PieceID uint   `gorm:"index;not null"`
	Name    string `gorm:"not null"`
}

// Snippet is one W-note window at an offset within a part's voice line.
type Snippet struct {
	ID      uint `gorm:"primarykey"`
	PieceID uint `gorm:"index;not null"`
	PartID  uint `gorm:"uniqueIndex:idx_snippet_part_offset;index;not null"`
	Offset  int  `gorm:"uniqueIndex:idx_snippet_part_offset;not null"`
}

// Stemmer is one of the six named stemming functions.
type Stemmer struct {
	ID   uint   `gorm:"primarykey"`
	Name string `gorm:"uniqueIndex;not null"`
}

// Stem is one distinct token string produced by one stemmer.
type Stem struct {
	ID        uint   `gorm:"primarykey"`
	StemmerID uint   `gorm:"uniqueIndex:idx_stem_stemmer_text;index;not null"`
	Text      string `gorm:"uniqueIndex:idx_stem_stemmer_text;index;not null"`
}

// Entry links a stem to every snippet it was produced from.
type Entry struct {
	ID        uint `gorm:"primarykey"`
	StemID    uint `gorm:"uniqueIndex:idx_entry_stem_snippet;index;not null"`
	SnippetID uint `gorm:"uniqueIndex:idx_entry_stem_snippet;index;not null"`
}

// AllModels lists every model for gorm.AutoMigrate.
func AllModels() []any {
	return []any{&Piece{}, &Part{}, &Snippet{}, &Stemmer{}, &Stem{}, &Entry{}}
}
