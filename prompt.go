package bioquery

import (
	"fmt"
	"strings"
)

// Prompt represents a structured intent-parsing prompt with consistent formatting.
type Prompt struct {
	Task        string   // Required: what the model should do
	Input       string   // Required: the residual instruction text
	Context     string   // Optional: what sequences were found
	Operations  []string // Supported operation catalogue
	Examples    []string // Instruction -> intent examples
	Schema      string   // Required: JSON schema for response
	Constraints []string // Required: rules and constraints
}

// Render converts the structured prompt to a string for the model.
func (p *Prompt) Render() string {
	var sections []string

	// Task is always first
	if p.Task != "" {
		sections = append(sections, "Task: "+p.Task)
	}

	// Input is always second
	if p.Input != "" {
		sections = append(sections, "Input: "+p.Input)
	}

	if p.Context != "" {
		sections = append(sections, "Context: "+p.Context)
	}

	if len(p.Operations) > 0 {
		ops := "Operations:\n"
		for i, op := range p.Operations {
			ops += fmt.Sprintf("  %d. %s\n", i+1, op)
		}
		sections = append(sections, strings.TrimSpace(ops))
	}

	if len(p.Examples) > 0 {
		examples := "Examples:\n"
		for _, ex := range p.Examples {
			examples += fmt.Sprintf("  - %s\n", ex)
		}
		sections = append(sections, strings.TrimSpace(examples))
	}

	// Schema - always required
	if p.Schema != "" {
		sections = append(sections, "Return JSON:\n"+p.Schema)
	}

	// Constraints - always last
	if len(p.Constraints) > 0 {
		con := "Constraints:\n"
		for _, c := range p.Constraints {
			con += "- " + c + "\n"
		}
		sections = append(sections, strings.TrimSpace(con))
	}

	return strings.Join(sections, "\n\n")
}

// Validate checks if the prompt has required fields.
func (p *Prompt) Validate() error {
	if p.Task == "" {
		return fmt.Errorf("prompt missing required Task field")
	}
	if p.Input == "" {
		return fmt.Errorf("prompt missing required Input field")
	}
	if p.Schema == "" {
		return fmt.Errorf("prompt missing required Schema field")
	}
	return nil
}

// describeOperations renders the operation table for the prompt catalogue.
func describeOperations() []string {
	out := make([]string, 0, len(operationSpecs)+1)
	for _, spec := range operationSpecs {
		line := fmt.Sprintf("%s: %s", spec.Operation, spec.Description)
		if len(spec.Params) > 0 {
			var params []string
			for _, ps := range spec.Params {
				p := fmt.Sprintf("%s (%s", ps.Name, ps.Kind)
				switch {
				case ps.Required:
					p += ", required"
				case ps.Default != nil:
					p += fmt.Sprintf(", default %v", ps.Default)
				}
				params = append(params, p+")")
			}
			line += "; parameters: " + strings.Join(params, ", ")
		}
		out = append(out, line)
	}
	return append(out, fmt.Sprintf("%s: the request matches none of the above", OpUnknown))
}

// describeSequences summarizes extracted sequences for the prompt context.
func describeSequences(seqs []ExtractedSequence) string {
	if len(seqs) == 0 {
		return "No sequence was found in the query."
	}
	parts := make([]string, len(seqs))
	for i, s := range seqs {
		parts[i] = fmt.Sprintf("%s is a %s %s sequence of %d residues", Placeholder(i+1), s.Kind, s.Alphabet, s.Len())
	}
	return "Sequences were replaced by placeholders: " + strings.Join(parts, "; ") + "."
}
