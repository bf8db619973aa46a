package xlsxstream

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/richardlehane/mscfb"
)

const (
	workbookPart      = "xl/workbook.xml"
	workbookRelsPart  = "xl/_rels/workbook.xml.rels"
	sharedStringsPart = "xl/sharedStrings.xml"
	stylesPart        = "xl/styles.xml"
)

var worksheetTarget = regexp.MustCompile(`(?i)worksheets/sheet(\d+)\.xml$`)

// sheetEntry is a worksheet declared by the manifest.
type sheetEntry struct {
	name  string
	rID   string
	state string
	index int // declaration order
	part  int
	// member is the archive name, path the staged file.
	member string
	path   string
}

type definedName struct {
	name         string
	localSheetID string
	refersTo     string
}

type relationship struct {
	target string
	typ    string
}

// archive stages the parts of an xlsx package that are read as streams
// and owns every file it extracts.
type archive struct {
	src   string
	dir   string
	files []string
	dirs  []string
	log   *slog.Logger

	sheets        []sheetEntry
	names         []definedName
	sharedStrings string
	styles        []byte
	cleaned       bool
}

// openArchive validates the package at src, extracts worksheets and the
// shared-string table below a new directory in root and reads styles into
// memory. On failure nothing stays behind on disk.
func openArchive(src, root string, log *slog.Logger) (_ *archive, err error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, &PermissionError{Path: src, Err: err}
	}
	if info.IsDir() {
		return nil, &PermissionError{Path: src, Err: errors.New("is a directory")}
	}

	zr, err := zip.OpenReader(src)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, &PermissionError{Path: src, Err: err}
		}
		return nil, &FormatError{Path: src, Reason: sniffContainer(src), Err: err}
	}
	defer zr.Close()

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[strings.ToLower(f.Name)] = f
	}

	manifest, ok := members[workbookPart]
	if !ok {
		return nil, &FormatError{Path: src, Part: workbookPart, Reason: "workbook manifest missing"}
	}
	data, err := readMember(manifest)
	if err != nil {
		return nil, &FormatError{Path: src, Part: workbookPart, Reason: "unreadable part", Err: err}
	}
	sheets, names, err := parseManifest(data)
	if err != nil {
		return nil, &FormatError{Path: src, Part: workbookPart, Reason: "malformed manifest", Err: err}
	}

	rels := map[string]relationship{}
	if f, ok := members[workbookRelsPart]; ok {
		data, err := readMember(f)
		if err == nil {
			rels, err = parseRelationships(data)
		}
		if err != nil {
			return nil, &FormatError{Path: src, Part: workbookRelsPart, Reason: "malformed relationships", Err: err}
		}
	}

	for i := range sheets {
		if err := resolveSheet(&sheets[i], rels); err != nil {
			return nil, &FormatError{Path: src, Part: workbookPart, Reason: err.Error()}
		}
		if _, ok := members[strings.ToLower(sheets[i].member)]; !ok {
			return nil, &FormatError{Path: src, Part: sheets[i].member, Reason: fmt.Sprintf("worksheet part of sheet %q missing", sheets[i].name)}
		}
	}

	arc := &archive{
		src:    src,
		dir:    filepath.Join(root, "xlsxstream-"+uuid.NewString()),
		log:    log,
		sheets: sheets,
		names:  names,
	}
	if err := os.Mkdir(arc.dir, 0o700); err != nil {
		return nil, &PermissionError{Path: arc.dir, Err: err}
	}
	arc.dirs = append(arc.dirs, arc.dir)
	log.Debug("staging workbook", "src", src, "dir", arc.dir)
	defer func() {
		if err != nil {
			arc.cleanup()
		}
	}()

	for i := range arc.sheets {
		s := &arc.sheets[i]
		if s.path, err = arc.extract(members[strings.ToLower(s.member)]); err != nil {
			return nil, &FormatError{Path: src, Part: s.member, Reason: "extract failed", Err: err}
		}
	}

	ssPart := partByType(rels, "/sharedStrings", sharedStringsPart)
	if f, ok := members[strings.ToLower(ssPart)]; ok {
		if arc.sharedStrings, err = arc.extract(f); err != nil {
			return nil, &FormatError{Path: src, Part: ssPart, Reason: "extract failed", Err: err}
		}
	}

	stPart := partByType(rels, "/styles", stylesPart)
	if f, ok := members[strings.ToLower(stPart)]; ok {
		if arc.styles, err = readMember(f); err != nil {
			return nil, &FormatError{Path: src, Part: stPart, Reason: "unreadable part", Err: err}
		}
	}

	sort.SliceStable(arc.sheets, func(i, j int) bool {
		return arc.sheets[i].part < arc.sheets[j].part
	})
	return arc, nil
}

// resolveSheet finds the worksheet part of a sheet. The relationship
// target names the part; without one the part number is the relationship
// id with its rId prefix stripped.
func resolveSheet(s *sheetEntry, rels map[string]relationship) error {
	if rel, ok := rels[s.rID]; ok && rel.target != "" {
		s.member = resolveRelativePath(rel.target, "xl")
		if m := worksheetTarget.FindStringSubmatch(s.member); m != nil {
			s.part, _ = strconv.Atoi(m[1])
			return nil
		}
	}
	n, err := strconv.Atoi(strings.TrimLeft(s.rID, "rRiIdD"))
	if err != nil {
		return fmt.Errorf("relationship id %q of sheet %q has no part number", s.rID, s.name)
	}
	s.part = n
	if s.member == "" {
		s.member = fmt.Sprintf("xl/worksheets/sheet%d.xml", n)
	}
	return nil
}

func partByType(rels map[string]relationship, suffix, fallback string) string {
	for _, rel := range rels {
		if strings.HasSuffix(rel.typ, suffix) && rel.target != "" {
			return resolveRelativePath(rel.target, "xl")
		}
	}
	return fallback
}

// sniffContainer names the kind of a file that is not a zip archive.
// Encrypted xlsx and legacy xls files are OLE2 compound documents.
func sniffContainer(src string) string {
	f, err := os.Open(src)
	if err != nil {
		return "not a zip archive"
	}
	defer f.Close()
	doc, err := mscfb.New(f)
	if err != nil {
		return "not a zip archive"
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "EncryptedPackage":
			return "encrypted workbook"
		case "Workbook", "Book":
			return "legacy xls workbook"
		}
	}
	return "compound document is not a workbook"
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// extract copies an archive member below the staging directory.
func (a *archive) extract(f *zip.File) (string, error) {
	dest := filepath.Join(a.dir, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(dest, a.dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal member name %q", f.Name)
	}
	if err := a.mkdirs(filepath.Dir(dest)); err != nil {
		return "", err
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	a.files = append(a.files, dest)
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return "", err
	}
	return dest, out.Close()
}

func (a *archive) mkdirs(dir string) error {
	rel, err := filepath.Rel(a.dir, dir)
	if err != nil || rel == "." {
		return err
	}
	cur := a.dir
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		cur = filepath.Join(cur, part)
		if err := os.Mkdir(cur, 0o700); err != nil {
			if os.IsExist(err) {
				continue
			}
			return err
		}
		a.dirs = append(a.dirs, cur)
	}
	return nil
}

// cleanup removes the staged files, then the directories created for them
// deepest first. It is best-effort and safe to call more than once.
func (a *archive) cleanup() {
	if a == nil || a.cleaned {
		return
	}
	a.cleaned = true
	clean := filepath.Clean(a.dir)
	if len(clean) <= 2 || clean == string(os.PathSeparator) || clean == "." {
		a.log.Debug("refusing to clean staging directory", "dir", a.dir)
		return
	}
	for i := len(a.files) - 1; i >= 0; i-- {
		if err := os.Remove(a.files[i]); err != nil && !os.IsNotExist(err) {
			a.log.Debug("remove staged file", "path", a.files[i], "error", err)
		}
	}
	for i := len(a.dirs) - 1; i >= 0; i-- {
		if err := os.Remove(a.dirs[i]); err != nil && !os.IsNotExist(err) {
			a.log.Debug("remove staging directory", "path", a.dirs[i], "error", err)
		}
	}
	a.files, a.dirs = nil, nil
}

// parseManifest reads the sheet declarations and defined names of
// xl/workbook.xml in document order.
func parseManifest(data []byte) ([]sheetEntry, []definedName, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var (
		sheets  []sheetEntry
		names   []definedName
		current *definedName
		text    strings.Builder
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sheet":
				s := sheetEntry{index: len(sheets)}
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "name":
						s.name = attr.Value
					case "id":
						s.rID = attr.Value
					case "state":
						s.state = attr.Value
					}
				}
				if s.name == "" || s.rID == "" {
					return nil, nil, fmt.Errorf("sheet %d lacks a name or relationship id", s.index+1)
				}
				sheets = append(sheets, s)
			case "definedName":
				current = &definedName{}
				text.Reset()
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "name":
						current.name = attr.Value
					case "localSheetId":
						current.localSheetID = attr.Value
					}
				}
			}
		case xml.CharData:
			if current != nil {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "definedName" && current != nil {
				current.refersTo = text.String()
				names = append(names, *current)
				current = nil
			}
		}
	}
	return sheets, names, nil
}

// parseRelationships maps relationship ids to their targets.
func parseRelationships(data []byte) (map[string]relationship, error) {
	result := make(map[string]relationship)
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var rID string
			var rel relationship
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "Id":
					rID = attr.Value
				case "Target":
					rel.target = attr.Value
				case "Type":
					rel.typ = attr.Value
				}
			}
			if rID != "" {
				result[rID] = rel
			}
		}
	}
}

// resolveRelativePath turns a relationship target into an archive member
// name. Absolute targets are rooted at the package.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(baseDir, target))
}
