package paginate

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE document (
	source TEXT NOT NULL,
	title  TEXT,
	lang   TEXT
);
CREATE TABLE pages (
	idx      INTEGER PRIMARY KEY,
	name     TEXT,
	blank    INTEGER NOT NULL,
	width    REAL NOT NULL,
	height   REAL NOT NULL,
	content_x REAL NOT NULL,
	content_y REAL NOT NULL,
	content_w REAL NOT NULL,
	content_h REAL NOT NULL,
	break    TEXT
);
CREATE TABLE fragments (
	id        INTEGER PRIMARY KEY,
	page      INTEGER NOT NULL REFERENCES pages(idx),
	parent    INTEGER REFERENCES fragments(id),
	margin    TEXT,
	box       TEXT NOT NULL,
	element_id TEXT,
	x         REAL NOT NULL,
	y         REAL NOT NULL,
	width     REAL NOT NULL,
	height    REAL NOT NULL,
	continued INTEGER NOT NULL,
	continues INTEGER NOT NULL,
	image     TEXT
);
CREATE TABLE runs (
	fragment INTEGER NOT NULL REFERENCES fragments(id),
	line     INTEGER NOT NULL,
	seq      INTEGER NOT NULL,
	x        REAL NOT NULL,
	baseline REAL NOT NULL,
	width    REAL NOT NULL,
	text     TEXT
);
CREATE INDEX fragments_page ON fragments(page);
`

// EncodeSqlite stores e in a fresh SQLite database and returns the database
// image.
func EncodeSqlite(e *Export) ([]byte, error) {
	conn, err := sqlite.OpenConn(":memory:", sqlite.OpenReadWrite, sqlite.OpenMemory)
	if err != nil {
		return nil, fmt.Errorf("open in-memory db: %w", err)
	}
	defer conn.Close()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := insertExport(conn, e); err != nil {
		return nil, err
	}
	data, err := conn.Serialize("main")
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return data, nil
}

func insertExport(conn *sqlite.Conn, e *Export) (err error) {
	defer sqlitex.Save(conn)(&err)

	if err := sqlitex.Execute(conn, `INSERT INTO document (source, title, lang) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{e.Source, e.Title, e.Lang}}); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	for _, p := range e.Pages {
		err := sqlitex.Execute(conn, `INSERT INTO pages VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				p.Index, p.Name, flag(p.Blank), p.PageBox.Width, p.PageBox.Height,
				p.Content.X, p.Content.Y, p.Content.Width, p.Content.Height, p.Break,
			}})
		if err != nil {
			return fmt.Errorf("insert page %d: %w", p.Index+1, err)
		}
		if err := insertFrags(conn, p.Index, "", p.Root); err != nil {
			return err
		}
		for _, m := range p.Margins {
			if err := insertFrags(conn, p.Index, m.Area, m.Frag); err != nil {
				return err
			}
		}
	}
	return nil
}

// insertFrags stores the fragment tree under root. Parents are always
// inserted before their children.
func insertFrags(conn *sqlite.Conn, page int, margin string, root *ExportFrag) error {
	ids := make(map[*ExportFrag]int64)
	var err error
	root.Walk(nil, func(f, parent *ExportFrag) {
		if err != nil {
			return
		}
		var pid any
		if parent != nil {
			pid = ids[parent]
		}
		var area any
		if margin != "" {
			area = margin
		}
		err = sqlitex.Execute(conn, `INSERT INTO fragments
			(page, parent, margin, box, element_id, x, y, width, height, continued, continues, image)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				page, pid, area, f.Box, f.ID, f.Rect.X, f.Rect.Y, f.Rect.Width, f.Rect.Height,
				flag(f.Continued), flag(f.Continues), f.Image,
			}})
		if err != nil {
			err = fmt.Errorf("insert fragment %s on page %d: %w", f.Box, page+1, err)
			return
		}
		ids[f] = conn.LastInsertRowID()
		for i, l := range f.Lines {
			for j, r := range l.Runs {
				if r.Text == "" {
					continue
				}
				err = sqlitex.Execute(conn, `INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?)`,
					&sqlitex.ExecOptions{Args: []any{ids[f], i, j, r.X, r.Baseline, r.Width, r.Text}})
				if err != nil {
					err = fmt.Errorf("insert run on page %d: %w", page+1, err)
					return
				}
			}
		}
	})
	return err
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
