package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

const embedBatchSize = 32

// Builder performs offline corpus ingestion: it reads the curated
// knowledge-base directory, composes passage texts, embeds them, and
// produces a Snapshot ready to publish or persist. Builds never run against
// the live snapshot; the Holder swap is the only touch point.
type Builder struct {
	embedder driven.EmbeddingService
	logger   *slog.Logger
}

// NewBuilder creates a Builder using the given embedding service
func NewBuilder(embedder driven.EmbeddingService, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{embedder: embedder, logger: logger}
}

// BuildFromDir ingests the knowledge-base directory layout:
//
//	<dir>/ncert/<subject>/*.json      chapter passages
//	<dir>/exemplar/<subject>/*.json   exemplar problem passages
//	<dir>/formulas/<subject>.json     formula sheets
//	<dir>/past_papers/*.json          past-paper question/solution pairs
//
// Missing collections are skipped; a directory yielding zero passages is an
// error since the engine would serve nothing.
func (b *Builder) BuildFromDir(ctx context.Context, dir string) (*Snapshot, error) {
	var passages []*domain.Passage

	for _, source := range []domain.SourceType{domain.SourceNCERT, domain.SourceExemplar} {
		chapterDir := filepath.Join(dir, string(source))
		if source == domain.SourceNCERT {
			chapterDir = filepath.Join(dir, "ncert")
		}
		loaded, err := b.loadChapterPassages(chapterDir, source)
		if err != nil {
			return nil, err
		}
		passages = append(passages, loaded...)
	}

	formulas, err := b.loadFormulaSheets(filepath.Join(dir, "formulas"))
	if err != nil {
		return nil, err
	}
	passages = append(passages, formulas...)

	papers, err := b.loadPastPapers(filepath.Join(dir, "past_papers"))
	if err != nil {
		return nil, err
	}
	passages = append(passages, papers...)

	if len(passages) == 0 {
		return nil, fmt.Errorf("%w: no passages found under %s", domain.ErrCorpusIntegrity, dir)
	}

	return b.Build(ctx, time.Now().UTC().Format("20060102T150405Z"), passages)
}

// Build embeds the passages in batches and assembles the snapshot
func (b *Builder) Build(ctx context.Context, version string, passages []*domain.Passage) (*Snapshot, error) {
	for start := 0; start < len(passages); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Text
		}

		embeddings, err := b.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: embedder returned %d vectors for %d texts",
				domain.ErrEmbedding, len(embeddings), len(batch))
		}
		for i, p := range batch {
			p.Embedding = embeddings[i]
		}
	}

	snapshot, err := BuildSnapshot(version, b.embedder.Dimensions(), passages)
	if err != nil {
		return nil, err
	}

	b.logger.Info("corpus built",
		"version", version,
		"passages", snapshot.Size(),
		"dimensions", snapshot.Dimensions(),
		"model", b.embedder.Model())
	return snapshot, nil
}

// chapterFile is the on-disk shape of NCERT/exemplar chapter content
type chapterFile struct {
	Chapter  string `json:"chapter"`
	Passages []struct {
		Text   string   `json:"text"`
		Page   int      `json:"page"`
		Topics []string `json:"topics"`
	} `json:"passages"`
}

func (b *Builder) loadChapterPassages(root string, source domain.SourceType) ([]*domain.Passage, error) {
	subjects, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var passages []*domain.Passage
	for _, subjectDir := range subjects {
		if !subjectDir.IsDir() {
			continue
		}
		subject := domain.ParseSubject(subjectDir.Name())
		if subject == "" {
			b.logger.Warn("skipping unknown subject directory", "dir", subjectDir.Name())
			continue
		}

		files, err := filepath.Glob(filepath.Join(root, subjectDir.Name(), "*.json"))
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			var chapter chapterFile
			if err := readJSON(file, &chapter); err != nil {
				return nil, err
			}
			stem := fileStem(file)
			for i, p := range chapter.Passages {
				text := strings.TrimSpace(p.Text)
				if text == "" {
					continue
				}
				meta := map[string]string{"chapter": chapter.Chapter}
				if p.Page > 0 {
					meta["page"] = fmt.Sprintf("%d", p.Page)
				}
				passages = append(passages, &domain.Passage{
					ID:         fmt.Sprintf("%s/%s/%s/p%d", source, subject, stem, i+1),
					Text:       text,
					Subject:    subject,
					Topic:      firstTopic(p.Topics, stem),
					SourceType: source,
					Metadata:   meta,
				})
			}
		}
	}
	return passages, nil
}

// formulaEntry is one row of a formula sheet
type formulaEntry struct {
	Name        string   `json:"name"`
	Formula     string   `json:"formula"`
	Description string   `json:"description"`
	Conditions  string   `json:"conditions"`
	Topics      []string `json:"topics"`
}

func (b *Builder) loadFormulaSheets(root string) ([]*domain.Passage, error) {
	files, err := filepath.Glob(filepath.Join(root, "*.json"))
	if err != nil || len(files) == 0 {
		return nil, err
	}

	var passages []*domain.Passage
	for _, file := range files {
		subject := domain.ParseSubject(fileStem(file))
		if subject == "" {
			b.logger.Warn("skipping formula sheet with unknown subject", "file", file)
			continue
		}

		var entries []formulaEntry
		if err := readJSON(file, &entries); err != nil {
			return nil, err
		}
		for i, f := range entries {
			var doc strings.Builder
			fmt.Fprintf(&doc, "%s: %s\n", f.Name, f.Formula)
			fmt.Fprintf(&doc, "Description: %s", f.Description)
			if f.Conditions != "" {
				fmt.Fprintf(&doc, "\nConditions: %s", f.Conditions)
			}
			passages = append(passages, &domain.Passage{
				ID:         fmt.Sprintf("formula/%s/f%d", subject, i+1),
				Text:       doc.String(),
				Subject:    subject,
				Topic:      firstTopic(f.Topics, f.Name),
				SourceType: domain.SourceFormula,
				Metadata:   map[string]string{"formula_name": f.Name},
			})
		}
	}
	return passages, nil
}

// paperFile is the on-disk shape of a past paper
type paperFile struct {
	Year      int `json:"year"`
	Questions []struct {
		Text       string   `json:"text"`
		Solution   string   `json:"solution"`
		Subject    string   `json:"subject"`
		Topics     []string `json:"topics"`
		Difficulty string   `json:"difficulty"`
		Marks      int      `json:"marks"`
	} `json:"questions"`
}

func (b *Builder) loadPastPapers(root string) ([]*domain.Passage, error) {
	files, err := filepath.Glob(filepath.Join(root, "*.json"))
	if err != nil || len(files) == 0 {
		return nil, err
	}

	var passages []*domain.Passage
	for _, file := range files {
		var paper paperFile
		if err := readJSON(file, &paper); err != nil {
			return nil, err
		}
		stem := fileStem(file)
		for i, q := range paper.Questions {
			subject := domain.ParseSubject(q.Subject)
			meta := map[string]string{"year": fmt.Sprintf("%d", paper.Year)}
			if q.Difficulty != "" {
				meta["difficulty"] = q.Difficulty
			}
			if q.Marks > 0 {
				meta["marks"] = fmt.Sprintf("%d", q.Marks)
			}
			passages = append(passages, &domain.Passage{
				ID:         fmt.Sprintf("past_paper/%s/q%d", stem, i+1),
				Text:       fmt.Sprintf("Question: %s\nSolution: %s", q.Text, q.Solution),
				Subject:    subject,
				Topic:      firstTopic(q.Topics, ""),
				SourceType: domain.SourcePastPaper,
				Metadata:   meta,
			})
		}
	}
	return passages, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func firstTopic(topics []string, fallback string) string {
	if len(topics) > 0 {
		return topics[0]
	}
	return fallback
}
