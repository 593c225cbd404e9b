// Package cache stores decoded beatmaps in sqlite, keyed by file path,
// modification time and size.
package cache

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	_ "github.com/mattn/go-sqlite3"

	"ppcalc/dotosu"
)

func init() {
	gob.Register(&dotosu.Circle{})
	gob.Register(&dotosu.Slider{})
	gob.Register(&dotosu.Spinner{})
}

type Cache struct {
	db *sql.DB
}

func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}

	initStatement := `
	create table if not exists beatmaps
	  (
		  path text not null primary key,
		  mtime integer not null,
		  size integer not null,
		  data blob not null
	  );
	`
	if _, err = db.Exec(initStatement); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Load returns the decoded beatmap at path, from the cache when the file is
// unchanged. It satisfies calc.Loader.
func (c *Cache) Load(path string) (*dotosu.Beatmap, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &dotosu.ParseError{Path: path, Msg: "stat", Err: err}
	}
	mtime := info.ModTime().UnixNano()

	if b, ok := c.lookup(abs, mtime, info.Size()); ok {
		return b, nil
	}

	b, err := dotosu.DecodeFile(path, dotosu.Options{})
	if err != nil {
		return nil, err
	}
	c.store(abs, mtime, info.Size(), b)
	return b, nil
}

func (c *Cache) lookup(path string, mtime, size int64) (*dotosu.Beatmap, bool) {
	var data []byte
	err := c.db.QueryRow("select data from beatmaps where path = ? and mtime = ? and size = ?", path, mtime, size).Scan(&data)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Println("cache: unable to query", path, err)
		}
		return nil, false
	}

	var b dotosu.Beatmap
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		log.Println("cache: unable to decode entry for", path, err)
		return nil, false
	}
	return &b, true
}

func (c *Cache) store(path string, mtime, size int64, b *dotosu.Beatmap) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		log.Println("cache: unable to encode", path, err)
		return
	}
	_, err := c.db.Exec("insert or replace into beatmaps(path, mtime, size, data) values(?, ?, ?, ?)", path, mtime, size, buf.Bytes())
	if err != nil {
		log.Println("cache: unable to save", path, err)
		return
	}
	log.Printf("cache: stored %s (%s)", filepath.Base(path), humanize.Bytes(uint64(buf.Len())))
}

// Len is the number of cached beatmaps.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.QueryRow("select count(*) from beatmaps").Scan(&n)
	return n, err
}

// Prune removes entries whose file no longer exists.
func (c *Cache) Prune() (int, error) {
	rows, err := c.db.Query("select path from beatmaps")
	if err != nil {
		return 0, err
	}
	var gone []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, err
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			gone = append(gone, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, p := range gone {
		if _, err := c.db.Exec("delete from beatmaps where path = ?", p); err != nil {
			return 0, err
		}
	}
	return len(gone), nil
}
