package types

// CorpusConfig locates the document set and its schema.
type CorpusConfig struct {
	// RootDir is the directory walked for markdown documents.
	RootDir string `json:"root_dir" yaml:"root_dir"`

	// SchemaPath is the HCL schema file describing document types.
	SchemaPath string `json:"schema_path" yaml:"schema_path"`

	// UsersPath is the optional YAML user directory. Empty disables
	// user-directory checks.
	UsersPath string `json:"users_path,omitempty" yaml:"users_path,omitempty"`
}

// IndexConfig holds settings for the SQLite document index.
type IndexConfig struct {
	// IndexDir is the directory holding the index database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ValidateConfig holds settings for validation runs.
type ValidateConfig struct {
	// Format selects the report renderer: text, compact, or json.
	Format string `json:"format" yaml:"format"`
}

// Config groups all docbase configuration.
type Config struct {
	Corpus   CorpusConfig   `json:"corpus" yaml:"corpus"`
	Index    IndexConfig    `json:"index" yaml:"index"`
	Validate ValidateConfig `json:"validate" yaml:"validate"`
}
