package scaffold

import (
	"embed"
	"io/fs"
	"path"
)

// templateFS holds the files copied into every new project.
//
//go:embed all:templates
var templateFS embed.FS

// Template returns the embedded template at name, relative to templates/.
func Template(name string) ([]byte, error) {
	return templateFS.ReadFile(path.Join("templates", name))
}

// notebookFiles returns the embedded notebooks as paths relative to
// templates/, sorted.
func notebookFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(templateFS, "templates/notebooks", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p[len("templates/"):])
		}
		return nil
	})
	return files, err
}
