package config

type KnowledgeConfig struct {
	// Dir holds *.txt and *.md files. Empty disables retrieval.
	Dir string `mapstructure:"dir"`

	// ChunkChars caps each indexed paragraph.
	ChunkChars int `mapstructure:"chunk_chars"`
	// MinScore is the minimum number of shared keywords for a chunk to count as relevant.
	MinScore int `mapstructure:"min_score"`
	TopK     int `mapstructure:"top_k"`
	MaxChars int `mapstructure:"max_chars"`
}

func NewKnowledgeConfig() *KnowledgeConfig {
	return &KnowledgeConfig{
		Dir:        "knowledge",
		ChunkChars: 300,
		MinScore:   2,
		TopK:       3,
		MaxChars:   400,
	}
}
