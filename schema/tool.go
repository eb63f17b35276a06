package schema

import "encoding/json"

// ToolDescriptor is a tool advertised by a provider's tools/list.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ToolNames returns tool names in listing order.
func ToolNames(tools []ToolDescriptor) []string {
	result := make([]string, 0, len(tools))
	for _, tool := range tools {
		result = append(result, tool.Name)
	}
	return result
}
