package features

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
)

// Cluster lexicon formats
const (
	// FormatClark reads "word cluster [weight]" lines (Clark and word2vec
	// k-means clusters)
	FormatClark = "clark"
	// FormatBrown reads "path<TAB>word<TAB>count" lines from Brown
	// clustering
	FormatBrown = "brown"
	// FormatYAML reads a YAML mapping of word to cluster
	FormatYAML = "yaml"
)

// brownPrefixes are the bit-path prefix lengths emitted for Brown clusters
var brownPrefixes = []int{4, 6, 10, 20}

// ClusterLexicon maps normalized words to a cluster identifier. It is
// immutable once loaded and may be shared.
type ClusterLexicon struct {
	name     string
	brown    bool
	clusters map[string]string
}

// NewClusterLexicon builds a flat lexicon from word -> cluster entries
func NewClusterLexicon(name string, clusters map[string]string) *ClusterLexicon {
	c := &ClusterLexicon{name: name, clusters: make(map[string]string, len(clusters))}
	for w, cl := range clusters {
		c.clusters[Normalize(w)] = cl
	}
	return c
}

// LoadClusterLexicon reads a lexicon in the given format
func LoadClusterLexicon(name, format string, r io.Reader) (*ClusterLexicon, error) {
	switch format {
	case FormatYAML:
		var entries map[string]string
		if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
			return nil, fmt.Errorf("cluster lexicon %s: %w", name, err)
		}
		return NewClusterLexicon(name, entries), nil
	case FormatClark, FormatBrown, "":
	default:
		return nil, fmt.Errorf("cluster lexicon %s: unknown format %q: %w", name, format, internalerr.ErrInvalidConfig)
	}

	c := &ClusterLexicon{name: name, brown: format == FormatBrown, clusters: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		var word, cluster string
		switch {
		case c.brown && len(fields) >= 2:
			cluster, word = fields[0], fields[1]
		case !c.brown && len(fields) >= 2:
			word, cluster = fields[0], fields[1]
		default:
			return nil, fmt.Errorf("cluster lexicon %s line %d: expected at least two fields: %w", name, lineNumber, internalerr.ErrInvalidInput)
		}
		c.clusters[Normalize(word)] = cluster
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

// Name returns the lexicon name used in feature strings
func (c *ClusterLexicon) Name() string {
	return c.name
}

// Len returns the number of words in the lexicon
func (c *ClusterLexicon) Len() int {
	return len(c.clusters)
}

// Lookup returns the cluster of a token
func (c *ClusterLexicon) Lookup(token string) (string, bool) {
	cl, ok := c.clusters[Normalize(token)]
	return cl, ok
}

// ClusterGenerator emits <name>=<cluster> for tokens found in a lexicon.
// Brown lexicons emit one feature per path prefix instead, the last one
// capped at the full path.
type ClusterGenerator struct {
	lexicon *ClusterLexicon
}

// NewClusterGenerator creates a word cluster extractor
func NewClusterGenerator(lexicon *ClusterLexicon) *ClusterGenerator {
	return &ClusterGenerator{lexicon: lexicon}
}

func (g *ClusterGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	cluster, ok := g.lexicon.Lookup(tokens[index])
	if !ok {
		return dst
	}

	if !g.lexicon.brown {
		return append(dst, g.lexicon.name+"="+cluster)
	}
	for _, n := range brownPrefixes {
		dst = append(dst, g.lexicon.name+"="+cluster[:min(n, len(cluster))])
		if n >= len(cluster) {
			break
		}
	}
	return dst
}
