package knowledge

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/internal/stringslices"
	"github.com/habiliai/agentloop/internal/stringutils"
	"github.com/mokiat/gog"
)

const (
	Header = "KNOWLEDGE (from your files):"

	minParagraphChars = 20
	minWordChars      = 3
	snippetChars      = 200
	filePattern       = "**/*.{txt,md}"
)

type (
	Chunk struct {
		Source string
		Text   string

		words map[string]struct{}
	}

	Hit struct {
		Chunk
		Score int
	}

	// Index is a keyword-overlap index over the paragraphs of a knowledge
	// directory. It is read-only after Load and safe for concurrent use.
	Index struct {
		conf   *config.KnowledgeConfig
		chunks []Chunk
	}
)

// Load indexes every *.txt and *.md file under conf.Dir. A missing or unset
// directory yields an empty index. Unreadable files are skipped.
func Load(logger *slog.Logger, conf *config.KnowledgeConfig) (*Index, error) {
	idx := &Index{conf: conf}
	if conf.Dir == "" {
		return idx, nil
	}
	if _, err := os.Stat(conf.Dir); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("knowledge directory not found", "dir", conf.Dir)
		return idx, nil
	}

	files, err := doublestar.Glob(os.DirFS(conf.Dir), filePattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list knowledge files in %s", conf.Dir)
	}
	sort.Strings(files)

	for _, file := range files {
		body, err := os.ReadFile(filepath.Join(conf.Dir, filepath.FromSlash(file)))
		if err != nil {
			logger.Warn("skipping knowledge file", "file", file, "error", err)
			continue
		}
		idx.chunks = append(idx.chunks, split(filepath.Base(file), string(body), conf.ChunkChars)...)
	}

	logger.Debug("knowledge indexed", "dir", conf.Dir, "files", len(files), "chunks", len(idx.chunks))
	return idx, nil
}

func split(source, text string, chunkChars int) []Chunk {
	text = strings.ToValidUTF8(strings.ReplaceAll(text, "\r\n", "\n"), "�")

	var chunks []Chunk
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if utf8.RuneCountInString(para) <= minParagraphChars {
			continue
		}
		para = stringutils.Head(para, chunkChars)
		chunks = append(chunks, Chunk{
			Source: source,
			Text:   para,
			words:  wordSet(para),
		})
	}
	return chunks
}

func wordSet(text string) map[string]struct{} {
	words := stringslices.Words(text, minWordChars)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (i *Index) Len() int {
	return len(i.chunks)
}

// Search scores every chunk by the number of distinct query words it shares
// and returns at most TopK chunks scoring MinScore or more, best first.
// Equal scores keep file order.
func (i *Index) Search(query string) []Hit {
	words := stringslices.Words(query, minWordChars)
	if len(words) == 0 || len(i.chunks) == 0 {
		return nil
	}

	var hits []Hit
	for _, chunk := range i.chunks {
		score := 0
		for _, w := range words {
			if _, ok := chunk.words[w]; ok {
				score++
			}
		}
		if score >= i.conf.MinScore {
			hits = append(hits, Hit{Chunk: chunk, Score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > i.conf.TopK {
		hits = hits[:i.conf.TopK]
	}
	return hits
}

// Context renders the hits for query as a prompt section, or "" when nothing
// is relevant. Snippets are added while their total stays within MaxChars.
func (i *Index) Context(query string) string {
	hits := i.Search(query)
	if len(hits) == 0 {
		return ""
	}

	snippets := gog.Map(hits, func(h Hit) string {
		return stringutils.Head(h.Text, snippetChars)
	})

	lines := []string{Header}
	used := 0
	for n, snippet := range snippets {
		size := utf8.RuneCountInString(snippet)
		if used+size > i.conf.MaxChars {
			break
		}
		lines = append(lines, "["+hits[n].Source+"] "+snippet)
		used += size
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}
