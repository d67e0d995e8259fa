// Package util provides content hashing and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"

	"github.com/mmarkdown/mmark/v2/mast"
)

// Both delimiters of a front matter block sit on their own line.
var (
	openDelimiter  = []byte("%%%\n")
	closeDelimiter = []byte("\n%%%")
)

// FrontMatter is the TOML block between %%% lines at the top of a Markdown
// file. Featured is the only key beyond the mmark title block.
type FrontMatter struct {
	*mast.TitleData
	Featured bool `toml:"featured"`
	Consumed int  `toml:"-"`
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// GetFrontMatter parses the front matter, which must be the first thing in
// md apart from whitespace. Consumed counts the bytes of the normalized and
// trimmed input that the block spans.
func GetFrontMatter(md []byte) (*FrontMatter, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	if !bytes.HasPrefix(md, openDelimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	rest := md[len(openDelimiter)-1:]
	second := bytes.Index(rest, closeDelimiter)
	if second == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	end := len(openDelimiter) - 1 + second + len(closeDelimiter)
	if end < len(md) && md[end] == '\n' {
		end++
	}

	info := &FrontMatter{
		TitleData: &mast.TitleData{},
	}
	if _, err := toml.Decode(string(rest[:second]), info); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}
	if info.TitleData.Language == "" {
		info.TitleData.Language = "en"
	}
	info.Consumed = end

	return info, nil
}

// SplitFrontMatter separates the front matter from the body. Without front
// matter the whole input is the body and the returned front matter is nil.
func SplitFrontMatter(md []byte) (*FrontMatter, []byte) {
	info, err := GetFrontMatter(md)
	if err != nil {
		return nil, md
	}
	md = bytes.TrimLeft(markdown.NormalizeNewlines(md), "\n \t\r")
	return info, md[info.Consumed:]
}
