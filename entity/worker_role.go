package entity

// WorkerRole binds a delegation target name to the tools its worker may call.
type WorkerRole struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tools       []string `json:"tools" yaml:"tools"`
}
