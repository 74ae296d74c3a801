// Package render prints the bindings of a call for consumption by other
// programs.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/argbind/internal/config"
	"github.com/funvibe/argbind/internal/history"
	"github.com/funvibe/argbind/pkg/argbind"
)

// Render writes the bindings of res to w in the given format.
func Render(w io.Writer, res *argbind.Result, format string) error {
	if format == config.FormatShell {
		return Shell(w, res)
	}
	return encode(w, Document(res), format)
}

// History writes history records to w. The sh format prints one
// tab-separated line per record.
func History(w io.Writer, records []*history.Record, format string) error {
	if format != config.FormatShell {
		if records == nil {
			records = []*history.Record{}
		}
		return encode(w, records, format)
	}
	for _, rec := range records {
		status := "ok"
		if !rec.OK() {
			status = rec.Code
			if status == "" {
				status = "error"
			}
		}
		quoted := make([]string, len(rec.Tokens))
		for i, tok := range rec.Tokens {
			quoted[i] = Quote(tok)
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.CreatedAt.Format(time.RFC3339), rec.ID, rec.CallSite, status, strings.Join(quoted, " "))
		if err != nil {
			return err
		}
	}
	return nil
}

func encode(w io.Writer, v interface{}, format string) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return config.ValidateFormat(format)
}

// Document returns the bindings keyed by variable name. Arrays become
// []string, dictionaries map[string]string and everything else string.
func Document(res *argbind.Result) map[string]interface{} {
	doc := make(map[string]interface{}, len(res.Bindings))
	for _, b := range res.Bindings {
		doc[b.Name] = Native(b.Value)
	}
	return doc
}

// Native converts v to a plain Go value.
func Native(v argbind.Value) interface{} {
	switch v.Type {
	case argbind.Array:
		if v.Items == nil {
			return []string{}
		}
		return v.Items
	case argbind.Dictionary:
		if v.Entries == nil {
			return map[string]string{}
		}
		return v.Entries
	}
	return v.Text
}

// Shell writes one bash assignment per binding, suitable for eval:
//
//	files=('a' 'b')
//	name='hello'
//	declare -A opts=(['color']='red')
//
// A binding whose name is not a shell identifier is an error and nothing is
// written for it or any later binding.
func Shell(w io.Writer, res *argbind.Result) error {
	for _, b := range res.Bindings {
		if !argbind.ValidName(b.Name) {
			return fmt.Errorf("cannot render %q as a shell variable name", b.Name)
		}
		if _, err := fmt.Fprintln(w, shellAssignment(b.Name, b.Value)); err != nil {
			return err
		}
	}
	return nil
}

func shellAssignment(name string, v argbind.Value) string {
	switch v.Type {
	case argbind.Array:
		quoted := make([]string, len(v.Items))
		for i, item := range v.Items {
			quoted[i] = Quote(item)
		}
		return name + "=(" + strings.Join(quoted, " ") + ")"
	case argbind.Dictionary:
		keys := make([]string, 0, len(v.Entries))
		for k := range v.Entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = "[" + Quote(k) + "]=" + Quote(v.Entries[k])
		}
		return "declare -A " + name + "=(" + strings.Join(pairs, " ") + ")"
	}
	return name + "=" + Quote(v.Text)
}

// Quote single-quotes s for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
