package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// AccountsWriter rewrites access.accounts in the config file and leaves the
// rest of the document, comments included, as it was.
type AccountsWriter struct {
	path string
	mu   sync.Mutex
}

// NewAccountsWriter creates a writer for the config file at path.
//
// Parameters:
//   - path: config file that holds access.accounts
//
// Returns:
//   - *AccountsWriter: writer bound to path
func NewAccountsWriter(path string) *AccountsWriter {
	return &AccountsWriter{path: path}
}

// SaveAccounts replaces the allow-list. The file is swapped atomically, so a
// failed write leaves the previous content in place.
//
// Parameters:
// - accounts: the complete allow-list, handles without '@'
//
// Returns:
// - error: any error that occurred while reading, encoding or replacing the file
func (w *AccountsWriter) SaveAccounts(accounts []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var doc yaml.Node
	perm := fs.FileMode(0o600)

	data, err := os.ReadFile(w.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config yaml: %w", err)
		}
		if info, statErr := os.Stat(w.path); statErr == nil {
			perm = info.Mode().Perm()
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("read config file: %w", err)
	}

	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return errors.New("config root is not a mapping")
	}

	access := mappingValue(root, "access")
	if access.Kind != yaml.MappingNode {
		return errors.New("access is not a mapping")
	}
	list := mappingValue(access, "accounts")
	replaceSequence(list, accounts)

	out, err := encode(&doc)
	if err != nil {
		return err
	}
	return writeAtomic(w.path, out, perm)
}

// mappingValue returns the value node for key, adding an empty mapping when
// the key is absent.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	valueNode := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	mapping.Content = append(mapping.Content, keyNode, valueNode)
	return valueNode
}

func replaceSequence(node *yaml.Node, values []string) {
	style := node.Style & yaml.FlowStyle
	content := make([]*yaml.Node, 0, len(values))
	for _, value := range values {
		content = append(content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
	}
	node.Kind = yaml.SequenceNode
	node.Tag = "!!seq"
	node.Value = ""
	node.Style = style
	node.Content = content
}

func encode(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode config yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
