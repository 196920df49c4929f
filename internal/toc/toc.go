// Package toc 从帖子正文中提取目录
package toc

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"forumvote/internal/utils"
)

var headingLevels = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4}

// 只由粗体组成的段落视为比 h4 更低一级的标题
const boldParagraphLevel = 5

type Section struct {
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
	Level  int    `json:"level"`
}

type Contents struct {
	Sections []Section `json:"sections"`
}

// Extract 渲染 markdown 后提取目录
func Extract(markdown string) (Contents, error) {
	html, err := utils.RenderMarkdown(markdown)
	if err != nil {
		return Contents{}, fmt.Errorf("render markdown: %w", err)
	}
	return ExtractHTML(html)
}

// ExtractHTML 按文档顺序收集标题，层级归一化为从 1 开始的连续值，锚点去重
func ExtractHTML(html string) (Contents, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Contents{}, fmt.Errorf("parse html: %w", err)
	}

	var sections []Section
	doc.Find("h1, h2, h3, h4, p").Each(func(_ int, s *goquery.Selection) {
		level, ok := headingLevels[goquery.NodeName(s)]
		if !ok {
			if !isBoldParagraph(s) {
				return
			}
			level = boldParagraphLevel
		}
		title := strings.Join(strings.Fields(s.Text()), " ")
		if title == "" {
			return
		}
		anchor, _ := s.Attr("id")
		sections = append(sections, Section{Title: title, Anchor: anchor, Level: level})
	})

	if len(sections) == 0 {
		return Contents{}, nil
	}

	normalizeLevels(sections)
	assignAnchors(sections)
	return Contents{Sections: sections}, nil
}

func isBoldParagraph(s *goquery.Selection) bool {
	children := s.Children()
	if children.Length() != 1 {
		return false
	}
	name := goquery.NodeName(children)
	if name != "strong" && name != "b" {
		return false
	}
	text := strings.TrimSpace(s.Text())
	return text != "" && text == strings.TrimSpace(children.Text())
}

// normalizeLevels 只用到 h2、h4 时分别映射为 1、2
func normalizeLevels(sections []Section) {
	used := make(map[int]bool)
	for _, s := range sections {
		used[s.Level] = true
	}
	levels := make([]int, 0, len(used))
	for l := range used {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	rank := make(map[int]int, len(levels))
	for i, l := range levels {
		rank[l] = i + 1
	}
	for i := range sections {
		sections[i].Level = rank[sections[i].Level]
	}
}

func assignAnchors(sections []Section) {
	used := make(map[string]bool)
	for i := range sections {
		anchor := sections[i].Anchor
		if anchor == "" {
			anchor = slugify(sections[i].Title)
		}
		if used[anchor] {
			n := 1
			for used[fmt.Sprintf("%s-%d", anchor, n)] {
				n++
			}
			anchor = fmt.Sprintf("%s-%d", anchor, n)
		}
		used[anchor] = true
		sections[i].Anchor = anchor
	}
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
