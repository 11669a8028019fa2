package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pageforge/internal/tester"
)

type fakeModel struct {
	renditions [][]byte
	err        error
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) ([][]byte, error) {
	return m.renditions, m.err
}

type memStore struct {
	keys []string
	err  error
}

func (s *memStore) Put(ctx context.Context, key string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	return nil
}

type fixedLLM struct {
	raw json.RawMessage
	err error
}

func (f *fixedLLM) Name() string { return "fixed" }
func (f *fixedLLM) Close() error { return nil }
func (f *fixedLLM) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	return f.raw, f.err
}

func TestSynthesizeStoresCategorizedRenditions(t *testing.T) {
	store := &memStore{}
	g := &Generator{
		Model: &fakeModel{renditions: [][]byte{[]byte("a"), []byte("b")}},
		LLM:   &fixedLLM{raw: json.RawMessage(`{"category":"Food & Drink"}`)},
		Store: store,
	}

	images, err := g.Synthesize(context.Background(), "a plate of pasta", "pasta")
	tester.NoErr(t, err)
	tester.Eq(t, len(images), 2)
	tester.Eq(t, images[0].Path, "food__drink/pasta_0.webp")
	tester.Eq(t, images[1].Path, "food__drink/pasta_1.webp")
	tester.Eq(t, images[0].Category, "food__drink")
	tester.Eq(t, store.keys, []string{"food__drink/pasta_0.webp", "food__drink/pasta_1.webp"})
}

func TestSynthesizeDegradesCategoryOnLLMFailure(t *testing.T) {
	store := &memStore{}
	g := &Generator{
		Model: &fakeModel{renditions: [][]byte{[]byte("a")}},
		LLM:   &fixedLLM{err: errors.New("backend down")},
		Store: store,
	}

	images, err := g.Synthesize(context.Background(), "anything", "x")
	tester.NoErr(t, err)
	tester.Eq(t, images[0].Category, "uncategorized")
}

func TestSynthesizeFallsBackToLocalOnRemoteFailure(t *testing.T) {
	fallback := &memStore{}
	g := &Generator{
		Model:    &fakeModel{renditions: [][]byte{[]byte("a")}},
		LLM:      &fixedLLM{raw: json.RawMessage(`{"category":"tech"}`)},
		Store:    &memStore{err: errors.New("bucket unreachable")},
		Fallback: fallback,
	}

	images, err := g.Synthesize(context.Background(), "a circuit board", "board")
	tester.NoErr(t, err)
	tester.Eq(t, len(images), 1)
	tester.Eq(t, fallback.keys, []string{"tech/board_0.webp"})
}

func TestSynthesizeFailsWithoutRenditions(t *testing.T) {
	g := &Generator{
		Model: &fakeModel{},
		Store: &memStore{},
	}
	_, err := g.Synthesize(context.Background(), "p", "x")
	tester.Err(t, err)
}

func TestSynthesizePropagatesModelError(t *testing.T) {
	g := &Generator{
		Model: &fakeModel{err: errors.New("quota exceeded")},
		Store: &memStore{},
	}
	_, err := g.Synthesize(context.Background(), "p", "x")
	tester.Err(t, err)
}

func TestSanitizeCategory(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Landscapes", "landscapes"},
		{"Food & Drink", "food__drink"},
		{"  Sci-Fi  ", "sci-fi"},
		{"../etc", "etc"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		tester.Eq(t, sanitizeCategory(tc.in), tc.want, tc.in)
	}
}

func TestLocalStorePut(t *testing.T) {
	root := t.TempDir()
	s := &LocalStore{Root: root}

	tester.NoErr(t, s.Put(context.Background(), "tech/board_0.webp", []byte("data")))

	got, err := os.ReadFile(filepath.Join(root, "tech", "board_0.webp"))
	tester.NoErr(t, err)
	tester.Eq(t, string(got), "data")

	tester.Err(t, s.Put(context.Background(), "  ", []byte("x")))
}
