package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
)

// isOCIReference checks if the argument looks like an OCI registry reference
// OCI refs have format: registry/repo:tag (e.g., ttl.sh/humanhash-words:1h)
func isOCIReference(arg string) bool {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return false
	}
	return strings.Contains(arg, "/") && strings.Count(arg, ":") == 1
}

// artifactName is the last path element of reference without its tag.
func artifactName(reference string) string {
	parts := strings.Split(reference, "/")
	name := parts[len(parts)-1]
	if i := strings.Index(name, ":"); i != -1 {
		name = name[:i]
	}
	return name
}

// pullArtifact pulls reference into a temporary directory and returns the
// regular files it contains, skipping manifests. cleanup removes the directory.
func pullArtifact(ctx context.Context, reference string) (files []string, cleanup func(), err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	repo, err := remote.NewRepository(reference)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid OCI reference: %w", err)
	}
	// Anonymous access; public registries don't require auth
	repo.PlainHTTP = strings.HasPrefix(reference, "localhost") || strings.Contains(reference, "localhost:")

	tmpDir, err := os.MkdirTemp("", "humanhash-oci-*")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup = func() { os.RemoveAll(tmpDir) }

	fs, err := file.New(tmpDir)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create file store: %w", err)
	}
	defer fs.Close()

	tag := "latest"
	if idx := strings.LastIndex(reference, ":"); idx != -1 {
		tag = reference[idx+1:]
	}

	desc, err := oras.Copy(ctx, repo, tag, fs, tag, oras.DefaultCopyOptions)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to pull from OCI registry: %w", err)
	}
	fmt.Printf("  Pulled %s (digest: %s)\n", reference, desc.Digest.String()[:19])

	// ORAS may place files in subdirectories, so walk recursively
	err = filepath.WalkDir(tmpDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to scan pulled content: %w", err)
	}
	if len(files) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("no files found in OCI artifact %s", reference)
	}
	return files, cleanup, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
