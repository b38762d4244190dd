package repository

import (
	"context"
	"sync"

	"library-lending/internals/models"
)

// MemoryStore keeps all records in process. It backs the test suites and
// local runs without Postgres. A single mutex serializes transactions, and
// Atomic works on a copy-on-write snapshot that only replaces the live state
// when fn succeeds, so a failed transaction leaves nothing behind.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	books      map[uint]models.Book
	patrons    map[uint]models.Patron
	borrowings map[uint]models.BorrowingRecord
	librarians map[uint]models.Librarian

	nextBook      uint
	nextPatron    uint
	nextBorrowing uint
	nextLibrarian uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		books:      map[uint]models.Book{},
		patrons:    map[uint]models.Patron{},
		borrowings: map[uint]models.BorrowingRecord{},
		librarians: map[uint]models.Librarian{},
	}}
}

func (st *memState) clone() *memState {
	next := &memState{
		books:         make(map[uint]models.Book, len(st.books)),
		patrons:       make(map[uint]models.Patron, len(st.patrons)),
		borrowings:    make(map[uint]models.BorrowingRecord, len(st.borrowings)),
		librarians:    make(map[uint]models.Librarian, len(st.librarians)),
		nextBook:      st.nextBook,
		nextPatron:    st.nextPatron,
		nextBorrowing: st.nextBorrowing,
		nextLibrarian: st.nextLibrarian,
	}
	for id, b := range st.books {
		next.books[id] = b
	}
	for id, p := range st.patrons {
		next.patrons[id] = p
	}
	for id, r := range st.borrowings {
		next.borrowings[id] = r
	}
	for id, l := range st.librarians {
		next.librarians[id] = l
	}
	return next
}

func (s *MemoryStore) Books() BookRepository           { return memBooks{store: s} }
func (s *MemoryStore) Patrons() PatronRepository       { return memPatrons{store: s} }
func (s *MemoryStore) Borrowings() BorrowingRepository { return memBorrowings{store: s} }
func (s *MemoryStore) Librarians() LibrarianRepository { return memLibrarians{store: s} }

func (s *MemoryStore) Atomic(_ context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	txn := &memTxn{state: snapshot}
	if err := fn(txn); err != nil {
		return err
	}
	s.state = snapshot
	return nil
}

// run executes op under the store mutex against the live state. Transaction
// views bypass this and hit their snapshot directly, since Atomic already
// holds the mutex for the whole transaction.
func (s *MemoryStore) run(op func(*memState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return op(s.state)
}

// memTxn is the Store handed to Atomic callbacks.
type memTxn struct {
	state *memState
}

func (t *memTxn) Books() BookRepository           { return memBooks{txn: t} }
func (t *memTxn) Patrons() PatronRepository       { return memPatrons{txn: t} }
func (t *memTxn) Borrowings() BorrowingRepository { return memBorrowings{txn: t} }
func (t *memTxn) Librarians() LibrarianRepository { return memLibrarians{txn: t} }

func (t *memTxn) Atomic(_ context.Context, fn func(Store) error) error {
	// nested transactions join the outer one
	return fn(t)
}

func (t *memTxn) run(op func(*memState) error) error {
	return op(t.state)
}

type runner interface {
	run(func(*memState) error) error
}

func pick(store *MemoryStore, txn *memTxn) runner {
	if txn != nil {
		return txn
	}
	return store
}

type memBooks struct {
	store *MemoryStore
	txn   *memTxn
}

func (r memBooks) Create(_ context.Context, book *models.Book) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		if book.ID == 0 {
			st.nextBook++
			book.ID = st.nextBook
		} else if book.ID > st.nextBook {
			st.nextBook = book.ID
		}
		st.books[book.ID] = *book
		return nil
	})
}

func (r memBooks) Update(_ context.Context, book *models.Book) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		if _, ok := st.books[book.ID]; !ok {
			return ErrNotFound
		}
		st.books[book.ID] = *book
		return nil
	})
}

func (r memBooks) Delete(_ context.Context, id uint) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		if _, ok := st.books[id]; !ok {
			return ErrNotFound
		}
		for _, rec := range st.borrowings {
			if rec.BookID == id {
				return ErrForeignKeyViolated
			}
		}
		delete(st.books, id)
		return nil
	})
}

func (r memBooks) FindByID(_ context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := pick(r.store, r.txn).run(func(st *memState) error {
		b, ok := st.books[id]
		if !ok {
			return ErrNotFound
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r memBooks) FindByIDForUpdate(ctx context.Context, id uint) (*models.Book, error) {
	// the transaction mutex already serializes writers, so the lock read
	// degenerates to a plain read
	return r.FindByID(ctx, id)
}

func (r memBooks) FindAll(_ context.Context) ([]models.Book, error) {
	var books []models.Book
	err := pick(r.store, r.txn).run(func(st *memState) error {
		books = make([]models.Book, 0, len(st.books))
		for id := uint(1); id <= st.nextBook; id++ {
			if b, ok := st.books[id]; ok {
				books = append(books, b)
			}
		}
		return nil
	})
	return books, err
}

type memPatrons struct {
	store *MemoryStore
	txn   *memTxn
}

func (r memPatrons) Create(_ context.Context, patron *models.Patron) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		if patron.ID == 0 {
			st.nextPatron++
			patron.ID = st.nextPatron
		} else if patron.ID > st.nextPatron {
			st.nextPatron = patron.ID
		}
		st.patrons[patron.ID] = *patron
		return nil
	})
}

func (r memPatrons) Update(_ context.Context, patron *models.Patron) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		if _, ok := st.patrons[patron.ID]; !ok {
			return ErrNotFound
		}
		st.patrons[patron.ID] = *patron
		return nil
	})
}

func (r memPatrons) Delete(_ context.Context, id uint) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		if _, ok := st.patrons[id]; !ok {
			return ErrNotFound
		}
		for _, rec := range st.borrowings {
			if rec.PatronID == id {
				return ErrForeignKeyViolated
			}
		}
		delete(st.patrons, id)
		return nil
	})
}

func (r memPatrons) FindByID(_ context.Context, id uint) (*models.Patron, error) {
	var patron models.Patron
	err := pick(r.store, r.txn).run(func(st *memState) error {
		p, ok := st.patrons[id]
		if !ok {
			return ErrNotFound
		}
		patron = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &patron, nil
}

func (r memPatrons) FindAll(_ context.Context) ([]models.Patron, error) {
	var patrons []models.Patron
	err := pick(r.store, r.txn).run(func(st *memState) error {
		patrons = make([]models.Patron, 0, len(st.patrons))
		for id := uint(1); id <= st.nextPatron; id++ {
			if p, ok := st.patrons[id]; ok {
				patrons = append(patrons, p)
			}
		}
		return nil
	})
	return patrons, err
}

type memBorrowings struct {
	store *MemoryStore
	txn   *memTxn
}

func (r memBorrowings) Create(_ context.Context, record *models.BorrowingRecord) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		if _, ok := st.books[record.BookID]; !ok {
			return ErrForeignKeyViolated
		}
		if _, ok := st.patrons[record.PatronID]; !ok {
			return ErrForeignKeyViolated
		}
		if record.ID == 0 {
			st.nextBorrowing++
			record.ID = st.nextBorrowing
		}
		st.borrowings[record.ID] = *record
		return nil
	})
}

func (r memBorrowings) Update(_ context.Context, record *models.BorrowingRecord) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		if _, ok := st.borrowings[record.ID]; !ok {
			return ErrNotFound
		}
		st.borrowings[record.ID] = *record
		return nil
	})
}

func (r memBorrowings) FindByID(_ context.Context, id uint) (*models.BorrowingRecord, error) {
	var record models.BorrowingRecord
	err := pick(r.store, r.txn).run(func(st *memState) error {
		rec, ok := st.borrowings[id]
		if !ok {
			return ErrNotFound
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r memBorrowings) FindOpenByBook(_ context.Context, bookID uint) (*models.BorrowingRecord, error) {
	var record *models.BorrowingRecord
	err := pick(r.store, r.txn).run(func(st *memState) error {
		for id := uint(1); id <= st.nextBorrowing; id++ {
			rec, ok := st.borrowings[id]
			if ok && rec.BookID == bookID && rec.ReturnDate == nil {
				record = &rec
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r memBorrowings) FindByBookAndPatron(_ context.Context, bookID, patronID uint) (*models.BorrowingRecord, error) {
	var record *models.BorrowingRecord
	err := pick(r.store, r.txn).run(func(st *memState) error {
		for id := st.nextBorrowing; id >= 1; id-- {
			rec, ok := st.borrowings[id]
			if ok && rec.BookID == bookID && rec.PatronID == patronID {
				record = &rec
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r memBorrowings) CountByBook(_ context.Context, bookID uint) (int64, error) {
	var n int64
	err := pick(r.store, r.txn).run(func(st *memState) error {
		for _, rec := range st.borrowings {
			if rec.BookID == bookID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r memBorrowings) CountByPatron(_ context.Context, patronID uint) (int64, error) {
	var n int64
	err := pick(r.store, r.txn).run(func(st *memState) error {
		for _, rec := range st.borrowings {
			if rec.PatronID == patronID {
				n++
			}
		}
		return nil
	})
	return n, err
}

type memLibrarians struct {
	store *MemoryStore
	txn   *memTxn
}

func (r memLibrarians) Create(_ context.Context, librarian *models.Librarian) error {
	return pick(r.store, r.txn).run(func(st *memState) error {
		for _, l := range st.librarians {
			if l.Email == librarian.Email {
				return ErrForeignKeyViolated
			}
		}
		if librarian.ID == 0 {
			st.nextLibrarian++
			librarian.ID = st.nextLibrarian
		}
		st.librarians[librarian.ID] = *librarian
		return nil
	})
}

func (r memLibrarians) FindByEmail(_ context.Context, email string) (*models.Librarian, error) {
	var librarian models.Librarian
	err := pick(r.store, r.txn).run(func(st *memState) error {
		for _, l := range st.librarians {
			if l.Email == email {
				librarian = l
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &librarian, nil
}
