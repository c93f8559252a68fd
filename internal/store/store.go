package store

import (
	"github.com/axiomabsolute/firms-go/internal/fierr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// LookupMatch is one row of the snippets-entries-stems-pieces join,
// filtered by a given (stemmer, stem text) pair.
type LookupMatch struct {
	SnippetID uint
	PieceID   uint
	PiecePath string
	PieceName string
	PartID    uint
	Offset    int
	Stem      string
}

// PartStems is the per-voice payload the retrieval engine hands the
// store for one piece's ingest: the stem text for every stemmer, at
// every snippet offset.
type PartStems struct {
	PartName     string
	SnippetCount int
	Stems        map[string][]string // stemmer name -> stem text per offset
}

// Index is the storage contract the retrieval engine depends on. Store
// (gorm/sqlite) and MemoryStore both satisfy it.
type Index interface {
	AddPiece(path, name string, parts []PartStems) error
	Lookup(stemmerName, stemText string) ([]LookupMatch, error)
	CorpusSize() (int, error)
}

// Store is the gorm/sqlite-backed Index.
type Store struct {
	db *gorm.DB
}

// Open creates (or reuses) a single sqlite database file and migrates
// the schema, wiping any prior content when fresh is true.
func Open(path string, fresh bool) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fierr.New(fierr.StoreIO, "store.Open", err)
	}
	if fresh {
		if err := db.Migrator().DropTable(AllModels()...); err != nil {
			return nil, fierr.New(fierr.StoreIO, "store.Open", err)
		}
	}
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fierr.New(fierr.StoreIO, "store.Open", err)
	}
	// Ingest amortizes commit cost across one transaction per piece;
	// relaxed durability is acceptable since the index can be rebuilt.
	db.Exec("PRAGMA synchronous = OFF")
	db.Exec("PRAGMA journal_mode = MEMORY")
	return &Store{db: db}, nil
}

// AddPiece upserts the piece row, then for every part upserts the part
// row, batch-inserts its snippets, and for every stemmer upserts its
// stems and entries. All writes happen inside one transaction.
func (s *Store) AddPiece(path, name string, parts []PartStems) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		piece, err := upsertPiece(tx, path, name)
		if err != nil {
			return err
		}
		for _, part := range parts {
			if err := ingestPart(tx, piece.ID, part); err != nil {
				return err
			}
		}
		return nil
	})
}

func ingestPart(tx *gorm.DB, pieceID uint, part PartStems) error {
	p, err := upsertPart(tx, pieceID, part.PartName)
	if err != nil {
		return err
	}

	snippetIDs, err := upsertSnippets(tx, pieceID, p.ID, part.SnippetCount)
	if err != nil {
		return err
	}

	for stemmerName, texts := range part.Stems {
		stemmer, err := upsertStemmer(tx, stemmerName)
		if err != nil {
			return err
		}
		for offset, text := range texts {
			if offset >= len(snippetIDs) {
				continue
			}
			stem, err := upsertStem(tx, stemmer.ID, text)
			if err != nil {
				return err
			}
			if err := upsertEntry(tx, stem.ID, snippetIDs[offset]); err != nil {
				return err
			}
		}
	}
	return nil
}

func upsertPiece(tx *gorm.DB, path, name string) (*Piece, error) {
	piece := Piece{Path: path, Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&piece).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertPiece", err)
	}
	var found Piece
	if err := tx.Where("path = ? AND name = ?", path, name).First(&found).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertPiece", err)
	}
	return &found, nil
}

func upsertPart(tx *gorm.DB, pieceID uint, name string) (*Part, error) {
	var found Part
	err := tx.Where("piece_id = ? AND name = ?", pieceID, name).First(&found).Error
	if err == nil {
		return &found, nil
	}
	part := Part{PieceID: pieceID, Name: name}
	if err := tx.Create(&part).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertPart", err)
	}
	return &part, nil
}

// upsertSnippets batch-inserts snippets for offsets 0..count-1 and
// re-selects their ids, rather than trusting a batch insert's
// last-insert-id for rows that may have been skipped by the conflict
// clause.
func upsertSnippets(tx *gorm.DB, pieceID, partID uint, count int) ([]uint, error) {
	if count <= 0 {
		return nil, nil
	}
	snippets := make([]Snippet, count)
	for i := range snippets {
		snippets[i] = Snippet{PieceID: pieceID, PartID: partID, Offset: i}
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "part_id"}, {Name: "offset"}},
		DoNothing: true,
	}).CreateInBatches(&snippets, 100).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertSnippets", err)
	}

	var rows []Snippet
	if err := tx.Where("part_id = ?", partID).Order("offset").Find(&rows).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertSnippets", err)
	}
	ids := make([]uint, count)
	for _, r := range rows {
		if r.Offset < count {
			ids[r.Offset] = r.ID
		}
	}
	return ids, nil
}

func upsertStemmer(tx *gorm.DB, name string) (*Stemmer, error) {
	stemmer := Stemmer{Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&stemmer).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertStemmer", err)
	}
	var found Stemmer
	if err := tx.Where("name = ?", name).First(&found).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertStemmer", err)
	}
	return &found, nil
}

func upsertStem(tx *gorm.DB, stemmerID uint, text string) (*Stem, error) {
	stem := Stem{StemmerID: stemmerID, Text: text}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stemmer_id"}, {Name: "text"}},
		DoNothing: true,
	}).Create(&stem).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertStem", err)
	}
	var found Stem
	if err := tx.Where("stemmer_id = ? AND text = ?", stemmerID, text).First(&found).Error; err != nil {
		return nil, fierr.New(fierr.StoreIO, "upsertStem", err)
	}
	return &found, nil
}

func upsertEntry(tx *gorm.DB, stemID, snippetID uint) error {
	entry := Entry{StemID: stemID, SnippetID: snippetID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stem_id"}, {Name: "snippet_id"}},
		DoNothing: true,
	}).Create(&entry).Error; err != nil {
		return fierr.New(fierr.StoreIO, "upsertEntry", err)
	}
	return nil
}

// Lookup joins snippets, entries, stems and pieces for every snippet
// carrying the given (stemmer, stem text) key. Duplicate rows are
// expected and meaningful: they raise term frequency upstream.
func (s *Store) Lookup(stemmerName, stemText string) ([]LookupMatch, error) {
	var matches []LookupMatch
	err := s.db.Table("entries").
		Select("snippets.id as snippet_id, snippets.piece_id, snippets.part_id, snippets.offset, pieces.path as piece_path, pieces.name as piece_name, stems.text as stem").
		Joins("JOIN stems ON stems.id = entries.stem_id").
		Joins("JOIN stemmers ON stemmers.id = stems.stemmer_id").
		Joins("JOIN snippets ON snippets.id = entries.snippet_id").
		Joins("JOIN pieces ON pieces.id = snippets.piece_id").
		Where("stemmers.name = ? AND stems.text = ?", stemmerName, stemText).
		Scan(&matches).Error
	if err != nil {
		return nil, fierr.New(fierr.StoreIO, "Lookup", err)
	}
	return matches, nil
}

// CorpusSize returns the number of distinct pieces in the index.
func (s *Store) CorpusSize() (int, error) {
	var count int64
	if err := s.db.Model(&Piece{}).Count(&count).Error; err != nil {
		return 0, fierr.New(fierr.StoreIO, "CorpusSize", err)
	}
	return int(count), nil
}

// DB exposes the underlying connection for callers that need raw access
// (the CLI's `info` verbs).
func (s *Store) DB() *gorm.DB { return s.db }
