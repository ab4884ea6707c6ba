package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/internal/stringutils"
)

const (
	findFilesLimit     = 20
	listDirectoryLimit = 30
)

type (
	CreateFileInput struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	}
	PathInput struct {
		FilePath string `json:"file_path"`
	}
	DirInput struct {
		DirPath string `json:"dir_path"`
	}
	MoveFileInput struct {
		Source      string `json:"source"`
		Destination string `json:"destination"`
	}
	FindFilesInput struct {
		Directory string `json:"directory"`
		Pattern   string `json:"pattern"`
	}
)

func fileTools(conf *config.ToolConfig) []Tool {
	return []Tool{
		NewTool(Schema{
			Name:        "create_file",
			Description: "Create or overwrite a file with content.",
			Params: []Param{
				{Name: "file_path", Type: TypeString, Description: "Path of the file to write", Required: true, Aliases: []string{"path", "filename"}},
				{Name: "content", Type: TypeString, Description: "Full file content", Required: true, Aliases: []string{"text", "data"}},
			},
		}, createFile),
		NewTool(Schema{
			Name:        "read_file",
			Description: "Read a text file.",
			Params: []Param{
				{Name: "file_path", Type: TypeString, Description: "Path of the file to read", Required: true, Aliases: []string{"path", "filename"}},
			},
		}, func(ctx *Context, in PathInput) (string, error) {
			return readFile(ctx, in, conf.ReadLimit)
		}),
		NewTool(Schema{
			Name:        "delete_file",
			Description: "Delete a file or directory.",
			Params: []Param{
				{Name: "file_path", Type: TypeString, Description: "Path to delete", Required: true, Aliases: []string{"path"}},
			},
		}, deleteFile),
		NewTool(Schema{
			Name:        "move_file",
			Description: "Move or rename a file or folder.",
			Params: []Param{
				{Name: "source", Type: TypeString, Description: "Source path", Required: true, Aliases: []string{"src", "from"}},
				{Name: "destination", Type: TypeString, Description: "Destination path", Required: true, Aliases: []string{"dest", "dst", "to"}},
			},
		}, moveFile),
		NewTool(Schema{
			Name:        "find_files",
			Description: "Search files by glob pattern, e.g. *.txt or **/*.go.",
			Params: []Param{
				{Name: "directory", Type: TypeString, Description: "Directory to search", Required: true, Aliases: []string{"dir", "dir_path", "path"}},
				{Name: "pattern", Type: TypeString, Description: "Glob pattern", Required: true, Aliases: []string{"glob"}},
			},
		}, findFiles),
		NewTool(Schema{
			Name:        "list_directory",
			Description: "List files and folders in a directory.",
			Params: []Param{
				{Name: "dir_path", Type: TypeString, Description: "Directory path", Required: true, Aliases: []string{"directory", "path", "dir"}},
			},
		}, listDirectory),
		NewTool(Schema{
			Name:        "create_directory",
			Description: "Create a directory and its parents.",
			Params: []Param{
				{Name: "dir_path", Type: TypeString, Description: "Directory to create", Required: true, Aliases: []string{"directory", "path", "dir"}},
			},
		}, createDirectory),
	}
}

func createFile(ctx *Context, in CreateFileInput) (string, error) {
	path := ctx.ResolvePath(in.FilePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create parent directory")
	}
	if err := os.WriteFile(path, []byte(in.Content), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}

	return fmt.Sprintf("Created: %s (%d bytes)", path, len(in.Content)), nil
}

func readFile(ctx *Context, in PathInput, limit int) (string, error) {
	path := ctx.ResolvePath(in.FilePath)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.Errorf("File not found: %s", path)
	} else if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}

	return stringutils.Truncate(string(data), limit, truncatedMarker), nil
}

func deleteFile(ctx *Context, in PathInput) (string, error) {
	path := ctx.ResolvePath(in.FilePath)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", errors.Errorf("Not found: %s", path)
	} else if err != nil {
		return "", errors.WithStack(err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return "", errors.WithStack(err)
		}
		return fmt.Sprintf("Deleted directory: %s", path), nil
	}
	if err := os.Remove(path); err != nil {
		return "", errors.WithStack(err)
	}
	return fmt.Sprintf("Deleted: %s", path), nil
}

func moveFile(ctx *Context, in MoveFileInput) (string, error) {
	src, dst := ctx.ResolvePath(in.Source), ctx.ResolvePath(in.Destination)
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.WithStack(err)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", errors.Wrapf(err, "failed to move %s", src)
	}
	return fmt.Sprintf("Moved: %s → %s", src, dst), nil
}

func findFiles(ctx *Context, in FindFilesInput) (string, error) {
	dir := ctx.ResolvePath(in.Directory)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", errors.Errorf("Directory not found: %s", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), in.Pattern)
	if err != nil {
		return "", errors.Wrapf(err, "bad pattern %q", in.Pattern)
	}
	if len(matches) == 0 {
		return "(no matches)", nil
	}
	if len(matches) > findFilesLimit {
		matches = matches[:findFilesLimit]
	}

	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, filepath.Join(dir, filepath.FromSlash(m)))
	}
	return strings.Join(lines, "\n"), nil
}

func listDirectory(ctx *Context, in DirInput) (string, error) {
	dir := ctx.ResolvePath(in.DirPath)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", errors.Errorf("Not found: %s", dir)
	} else if err != nil {
		return "", errors.WithStack(err)
	}
	if len(entries) == 0 {
		return "(empty)", nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	items := make([]string, 0, min(len(entries), listDirectoryLimit)+1)
	for _, e := range entries {
		if len(items) == listDirectoryLimit {
			items = append(items, "...more")
			break
		}
		if e.IsDir() {
			items = append(items, "📁 "+e.Name())
			continue
		}
		size := ""
		if info, err := e.Info(); err == nil {
			size = humanSize(info.Size())
		}
		items = append(items, "📄 "+e.Name()+size)
	}
	return strings.Join(items, "\n"), nil
}

func humanSize(n int64) string {
	switch {
	case n > 1<<20:
		return fmt.Sprintf(" (%dMB)", n>>20)
	case n > 1<<10:
		return fmt.Sprintf(" (%dKB)", n>>10)
	default:
		return ""
	}
}

func createDirectory(ctx *Context, in DirInput) (string, error) {
	dir := ctx.ResolvePath(in.DirPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WithStack(err)
	}
	return fmt.Sprintf("Directory created: %s", dir), nil
}
