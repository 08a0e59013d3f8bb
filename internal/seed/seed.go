// Package seed loads the embedded FEKRA knowledge base into the document
// store. Seeding is idempotent: every FAQ upserts by its question.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fekra/internal/store"
)

//go:embed faqs.yaml
var faqsYAML []byte

// FAQ is one knowledge-base entry.
type FAQ struct {
	Question string   `yaml:"question"`
	Answer   string   `yaml:"answer"`
	Tags     []string `yaml:"tags"`
}

// Upserter is the write-side store surface seeding needs. Satisfied by
// *store.Memory and *store.SQLite.
type Upserter interface {
	Upsert(ctx context.Context, collection, key string, doc store.Document, searchText string) error
}

// LoadFAQs parses the embedded corpus.
func LoadFAQs() ([]FAQ, error) {
	var faqs []FAQ
	if err := yaml.Unmarshal(faqsYAML, &faqs); err != nil {
		return nil, fmt.Errorf("seed: parse faqs: %w", err)
	}
	return faqs, nil
}

// FAQs upserts every embedded FAQ into the faqs collection, keyed by
// question. The search text covers question, answer, and tags so the text
// index matches any of them.
func FAQs(ctx context.Context, st Upserter) (int, error) {
	faqs, err := LoadFAQs()
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, f := range faqs {
		tags := make([]any, len(f.Tags))
		for i, t := range f.Tags {
			tags[i] = t
		}
		doc := store.Document{
			"question":  f.Question,
			"answer":    f.Answer,
			"tags":      tags,
			"updatedAt": now,
		}
		searchText := f.Question + " " + f.Answer + " " + strings.Join(f.Tags, " ")
		if err := st.Upsert(ctx, "faqs", f.Question, doc, searchText); err != nil {
			return 0, fmt.Errorf("seed: upsert %q: %w", f.Question, err)
		}
	}
	return len(faqs), nil
}
