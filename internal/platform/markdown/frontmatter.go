package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const separator = "---\n"

func splitRaw(content string) (string, string, bool, error) {
	if !strings.HasPrefix(content, separator) {
		return "", content, false, nil
	}
	rest := strings.TrimPrefix(content, separator)
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return "", "", false, fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	return rest[:idx], rest[idx+len("\n---\n"):], true, nil
}

// DecodeFrontmatter unmarshals the frontmatter into out and returns the body.
// A document without frontmatter leaves out untouched.
func DecodeFrontmatter(content string, out any) (string, error) {
	raw, body, ok, err := splitRaw(content)
	if err != nil {
		return "", err
	}
	if !ok {
		return body, nil
	}
	if err := yaml.Unmarshal([]byte(raw), out); err != nil {
		return "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return body, nil
}

func RenderFrontmatter(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(body)
	return buf.String(), nil
}
