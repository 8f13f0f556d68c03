package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootPage = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

// child command without children
const childPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// child with children
const childParentPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
has_children: true
---
`

// grandchildren
const grandchildPage = `---
layout: default
title: %s
parent: %s
grand_parent: %s
nav_order: %d
---
`

// docType codes whether the command is a grandchild, child, etc
type docType int

const (
	root docType = iota
	child
	childParent
	grandchild
)

// meta is for describing the position/info for a command doc page
type meta struct {
	docType     docType
	title       string
	navOrder    int
	parent      string
	grandParent string
}

// docsCmd writes the Markdown docs of every command
var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Write Markdown docs for seqcmp's commands",
	Args:   cobra.ExactArgs(1),
	RunE:   docsExec,
	Hidden: true,
}

func docsExec(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	pages := docPages(RootCmd)
	prepender := func(filename string) string {
		return filePrepender(pages, filename)
	}
	if err := doc.GenMarkdownTreeCustom(RootCmd, dir, prepender, linkHandler); err != nil {
		return fmt.Errorf("failed to write docs: %w", err)
	}
	return nil
}

// docPages maps from the base Markdown file name of each documented command
// to its place in the navigation
func docPages(rootCmd *cobra.Command) map[string]meta {
	pages := make(map[string]meta)

	var walk func(c *cobra.Command, depth, order int)
	walk = func(c *cobra.Command, depth, order int) {
		m := meta{title: c.Name(), navOrder: order}
		switch {
		case depth == 0:
			m.docType = root
		case depth == 1 && c.HasAvailableSubCommands():
			m.docType = childParent
			m.parent = c.Parent().Name()
		case depth == 1:
			m.docType = child
			m.parent = c.Parent().Name()
		default:
			m.docType = grandchild
			m.parent = c.Parent().Name()
			m.grandParent = c.Parent().Parent().Name()
		}
		pages[strings.ReplaceAll(c.CommandPath(), " ", "_")] = m

		i := 0
		for _, sub := range c.Commands() {
			if !sub.IsAvailableCommand() || sub.IsAdditionalHelpTopicCommand() {
				continue
			}
			walk(sub, depth+1, i)
			i++
		}
	}
	walk(rootCmd, 0, 0)

	return pages
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func filePrepender(pages map[string]meta, filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	m, ok := pages[base]
	if !ok {
		return ""
	}

	switch m.docType {
	case root:
		return fmt.Sprintf(rootPage, m.title, m.navOrder)
	case child:
		return fmt.Sprintf(childPage, m.title, m.parent, m.navOrder)
	case childParent:
		return fmt.Sprintf(childParentPage, m.title, m.parent, m.navOrder)
	case grandchild:
		return fmt.Sprintf(grandchildPage, m.title, m.parent, m.grandParent, m.navOrder)
	}

	return ""
}

// linkHandler returns the URL to a documentation page
func linkHandler(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))

	if base == "seqcmp" {
		return "/"
	}
	return base
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
