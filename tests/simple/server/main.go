// A small end-to-end example app: an in-memory bookstore served over the
// graphbind registry, engine, and HTTP handler.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hanpama/graphbind/internal/binding"
	"github.com/hanpama/graphbind/internal/eventbus"
	"github.com/hanpama/graphbind/internal/language"
	"github.com/hanpama/graphbind/internal/registry"
	"github.com/hanpama/graphbind/internal/schema"
	"github.com/hanpama/graphbind/internal/server"
)

const sdl = `
type Query {
  book(id: ID!): Book
  books(genre: Genre, limit: Int): [Book!]!
  searchBooks(term: String!): [Book!]!
  me: Reader
}

type Mutation {
  addBook(input: AddBookInput!): Book!
  review(input: ReviewInput!): Review!
}

type Book {
  id: ID!
  title: String!
  author: String!
  genre: Genre!
  reviews: [Review!]!
}

type Review {
  bookId: ID!
  reader: String!
  stars: Int!
  comment: String
}

type Reader {
  name: String!
  locale: String!
}

input AddBookInput {
  title: String!
  author: String!
  genre: Genre!
}

input ReviewInput {
  bookId: ID!
  stars: Int!
  comment: String
}

enum Genre {
  FICTION
  NONFICTION
  POETRY
}
`

type book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

type review struct {
	BookID  string  `json:"bookId"`
	Reader  string  `json:"reader"`
	Stars   int     `json:"stars"`
	Comment *string `json:"comment"`
}

type readerInfo struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

type addBookInput struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

type reviewInput struct {
	BookID  string  `json:"bookId"`
	Stars   int     `json:"stars"`
	Comment *string `json:"comment"`
}

type store struct {
	mu      sync.RWMutex
	books   map[string]*book
	reviews map[string][]*review
	nextID  int
}

func newStore() *store {
	s := &store{
		books:   map[string]*book{},
		reviews: map[string][]*review{},
		nextID:  1,
	}
	s.seed()
	return s
}

func (s *store) seed() {
	for _, b := range []*book{
		{ID: "book-1", Title: "The Go Programming Language", Author: "Donovan & Kernighan", Genre: "NONFICTION"},
		{ID: "book-2", Title: "Leaves of Grass", Author: "Walt Whitman", Genre: "POETRY"},
		{ID: "book-3", Title: "The Dispossessed", Author: "Ursula K. Le Guin", Genre: "FICTION"},
	} {
		s.books[b.ID] = b
	}
	s.nextID = 4
}

func (s *store) get(id string) *book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.books[id]
}

func (s *store) list(genre *string, limit *int) []*book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*book, 0, len(s.books))
	for _, b := range s.books {
		if genre != nil && b.Genre != *genre {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit != nil && *limit < len(out) {
		out = out[:*limit]
	}
	return out
}

func (s *store) search(term string) []*book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(term)
	var out []*book
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) add(in addBookInput) *book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &book{
		ID:     fmt.Sprintf("book-%d", s.nextID),
		Title:  in.Title,
		Author: in.Author,
		Genre:  in.Genre,
	}
	s.nextID++
	s.books[b.ID] = b
	return b
}

func (s *store) addReview(in reviewInput, who string) (*review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[in.BookID]; !ok {
		return nil, fmt.Errorf("book %q not found", in.BookID)
	}
	r := &review{BookID: in.BookID, Reader: who, Stars: in.Stars, Comment: in.Comment}
	s.reviews[in.BookID] = append(s.reviews[in.BookID], r)
	return r, nil
}

func (s *store) reviewsFor(id string) []*review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs := s.reviews[id]
	out := make([]*review, len(rs))
	copy(out, rs)
	return out
}

func register(reg *registry.Registry, db *store) {
	reg.MustRegister("Query", "book",
		func(id string) *book { return db.get(id) },
		registry.WithParams(binding.Named("id").Require()),
	)
	reg.MustRegister("Query", "books",
		func(genre *string, limit *int) []*book { return db.list(genre, limit) },
		registry.WithParams(binding.Named("genre"), binding.Named("limit")),
	)
	reg.MustRegister("Query", "searchBooks",
		func(ctx context.Context, term string) ([]*book, error) {
			return db.search(term), nil
		},
		registry.WithParams(binding.Named("term").Require()),
		registry.Async(),
	)
	reg.MustRegister("Query", "me",
		func(name string, locale string) *readerInfo {
			return &readerInfo{Name: name, Locale: locale}
		},
		registry.WithParams(
			binding.Named("name").FromCookie("reader").WithDefault("anonymous"),
			binding.Named("locale").FromHeader("Accept-Language").WithDefault("en"),
		),
	)
	reg.MustRegister("Book", "reviews",
		func(env *binding.FieldEnv) []*review {
			b := env.Source().(*book)
			return db.reviewsFor(b.ID)
		},
		registry.WithParams(binding.Anonymous()),
	)
	reg.MustRegister("Mutation", "addBook",
		func(in addBookInput) *book { return db.add(in) },
		registry.WithParams(binding.Named("input").Require()),
	)
	reg.MustRegister("Mutation", "review",
		func(in reviewInput, who string) (*review, error) {
			return db.addReview(in, who)
		},
		registry.WithParams(
			binding.Named("input").Require(),
			binding.Named("who").FromCookie("reader").Require(),
		),
	)
}

func main() {
	addr := flag.String("addr", ":8090", "HTTP listen address")
	flag.Parse()

	astSchema, err := language.LoadSchema("bookstore", sdl)
	if err != nil {
		log.Fatal(err)
	}
	sch := schema.Build(astSchema)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	eventbus.Use(eventbus.New())

	reg := registry.New(registry.WithLogger(logger))
	register(reg, newStore())

	h, err := server.New(reg, sch, server.WithPretty())
	if err != nil {
		log.Fatal(err)
	}
	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("bookstore listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}
