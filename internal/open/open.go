package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/wachat-insight/internal/extract"
	"github.com/Zuo-Peng/wachat-insight/internal/index"
)

// OpenRecord extracts an archive's chat text to a temporary file and opens
// it in $EDITOR at the line where the record starts. hitIdx < 0 opens at the
// top.
func OpenRecord(db *index.DB, archive string, hitIdx int) error {
	arch, err := db.GetArchive(archive)
	if err != nil {
		return fmt.Errorf("get archive: %w", err)
	}
	if arch == nil {
		return fmt.Errorf("archive not found: %s", archive)
	}

	// find line number for the hit record
	lineNum := 1
	if hitIdx >= 0 {
		rec, err := db.GetRecord(archive, hitIdx)
		if err == nil && rec != nil && rec.LineNumber > 0 {
			lineNum = rec.LineNumber
		}
	}

	filePath, err := ExtractText(archive, os.TempDir())
	if err != nil {
		return err
	}
	defer os.Remove(filePath)

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, filePath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ExtractText writes the decoded chat text of archive to a new file in dir
// and returns its path. The caller removes the file. Line numbers in the
// file match the indexed records.
func ExtractText(archive, dir string) (string, error) {
	if _, err := os.Stat(archive); err != nil {
		return "", fmt.Errorf("file not found: %s", archive)
	}
	res := extract.ExtractFiles([]string{archive})
	if len(res.Entries) == 0 {
		if err := res.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no chat log in %s", archive)
	}

	f, err := os.CreateTemp(dir, "wca-*.txt")
	if err != nil {
		return "", fmt.Errorf("create chat text file: %w", err)
	}
	if _, err := f.WriteString(res.Text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write chat text: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write chat text: %w", err)
	}
	return f.Name(), nil
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		// block until the tab is closed
		return exec.Command(editor, "--wait", "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
