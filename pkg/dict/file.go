package dict

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WordListExt is the extension of word-list files picked up from directories.
const WordListExt = ".txt"

// ReadWords reads one word per line. Blank lines and lines starting with '#'
// are skipped; surrounding whitespace is trimmed.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// LoadFile reads a word-list file.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDictionary)
	}
	return words, nil
}

// RegisterFile loads path and registers it under name.
func (r *Registry) RegisterFile(name, path string, opts RegisterOptions) error {
	words, err := LoadFile(path)
	if err != nil {
		return err
	}
	if opts.Description == "" {
		opts.Description = fmt.Sprintf("%s (%d words)", path, len(words))
	}
	return r.RegisterWords(name, words, opts)
}

// RegisterDir registers every word list in dir, named after the file without
// its extension. It returns the registered names.
func (r *Registry) RegisterDir(dir string, opts RegisterOptions) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read word-list directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name, ok := wordListName(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		if err := r.RegisterFile(name, filepath.Join(dir, e.Name()), opts); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func wordListName(file string) (string, bool) {
	base := filepath.Base(file)
	if !strings.HasSuffix(base, WordListExt) || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, WordListExt), true
}
