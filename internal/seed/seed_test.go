package seed

import (
	"context"
	"strings"
	"testing"

	"fekra/internal/store"
)

func TestLoadFAQs_ShouldParseEmbeddedCorpus(t *testing.T) {
	faqs, err := LoadFAQs()
	if err != nil {
		t.Fatalf("LoadFAQs: %v", err)
	}
	if len(faqs) < 10 {
		t.Fatalf("expected at least 10 FAQs, got %d", len(faqs))
	}
	for _, f := range faqs {
		if f.Question == "" || f.Answer == "" {
			t.Errorf("FAQ with empty question or answer: %+v", f)
		}
	}
}

func TestLoadFAQs_ShouldContainTheAboutEntry(t *testing.T) {
	faqs, err := LoadFAQs()
	if err != nil {
		t.Fatalf("LoadFAQs: %v", err)
	}
	for _, f := range faqs {
		if f.Question == "What is FEKRA?" {
			if !strings.Contains(f.Answer, "2021") {
				t.Errorf("unexpected answer: %q", f.Answer)
			}
			return
		}
	}
	t.Error(`corpus is missing "What is FEKRA?"`)
}

func TestFAQs_ShouldUpsertEveryEntry(t *testing.T) {
	m := store.NewMemory()
	n, err := FAQs(context.Background(), m)
	if err != nil {
		t.Fatalf("FAQs: %v", err)
	}

	docs, err := m.Find(context.Background(), "faqs", store.Query{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != n {
		t.Errorf("expected %d documents, got %d", n, len(docs))
	}
	if docs[0].String("question") == "" {
		t.Errorf("seeded document missing question: %v", docs[0])
	}
	if len(docs[0].Strings("tags")) == 0 {
		t.Errorf("seeded document missing tags: %v", docs[0])
	}
}

func TestFAQs_ShouldBeIdempotent(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	first, err := FAQs(ctx, m)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if _, err := FAQs(ctx, m); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	docs, err := m.Find(ctx, "faqs", store.Query{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != first {
		t.Errorf("re-seeding duplicated documents: %d vs %d", len(docs), first)
	}
}
