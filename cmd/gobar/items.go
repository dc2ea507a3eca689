package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/gobar/internal/definition"
	"github.com/example/gobar/pkg/errors"
)

type itemFlags struct {
	itemType    string
	label       string
	command     string
	args        []string
	workDir     string
	url         string
	description string
	parent      string
	attrs       map[string]string
}

func (f *itemFlags) register(fs *pflag.FlagSet, defaultType string) {
	fs.StringVar(&f.itemType, "type", defaultType, "item type: text, divider, command, url, menu")
	fs.StringVar(&f.label, "label", "", "display label")
	fs.StringVar(&f.command, "command", "", "command or executable path")
	fs.StringSliceVar(&f.args, "args", nil, "comma-separated command arguments")
	fs.StringVar(&f.workDir, "workdir", "", "working directory for command execution")
	fs.StringVar(&f.url, "url", "", "target URL")
	fs.StringVar(&f.description, "description", "", "tooltip description")
	fs.StringVar(&f.parent, "parent", "", "id of the item whose submenu holds this one")
	fs.StringToStringVar(&f.attrs, "attr", nil, "extra attribute as key=value (repeatable)")
}

// apply copies the flags the user set onto item.
func (f *itemFlags) apply(fs *pflag.FlagSet, item *definition.Item) error {
	if fs.Changed("type") || item.Type == "" {
		t, err := definition.ParseType(f.itemType)
		if err != nil {
			return err
		}
		item.Type = t
	}
	if fs.Changed("label") {
		item.Label = f.label
	}
	if fs.Changed("command") {
		item.Command = f.command
	}
	if fs.Changed("args") {
		item.Arguments = f.args
	}
	if fs.Changed("workdir") {
		item.WorkingDir = f.workDir
	}
	if fs.Changed("url") {
		item.URL = f.url
	}
	if fs.Changed("description") {
		item.Description = f.description
	}
	if fs.Changed("parent") {
		item.ParentID = f.parent
	}
	if len(f.attrs) > 0 {
		if item.Attributes == nil {
			item.Attributes = map[string]interface{}{}
		}
		for k, v := range f.attrs {
			if v == "" {
				delete(item.Attributes, k)
				continue
			}
			item.Attributes[k] = v
		}
	}

	// fields that only make sense for another type are dropped
	if item.Type != definition.TypeCommand {
		item.Command, item.Arguments, item.WorkingDir = "", nil, ""
	}
	if item.Type != definition.TypeURL {
		item.URL = ""
	}

	_, err := definition.Node(*item)
	return err
}

type itemsCmd struct {
	app   *app
	file  string
	title string
}

func (a *app) newItemsCmd() *cobra.Command {
	ic := &itemsCmd{app: a}
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Edit the items of a definition file",
	}
	cmd.PersistentFlags().StringVarP(&ic.file, "file", "f", "", "definition file (default $GOBAR_DEFINITION or the user config menu.yaml)")
	cmd.AddCommand(ic.listCmd(), ic.addCmd(), ic.updateCmd(), ic.deleteCmd())
	return cmd
}

func (ic *itemsCmd) path() (string, error) {
	if ic.file != "" {
		return ic.file, nil
	}
	return definition.DefaultPath()
}

// open loads the definition, starting an empty one when the file does not
// exist yet.
func (ic *itemsCmd) open() (string, *definition.File, error) {
	path, err := ic.path()
	if err != nil {
		return "", nil, err
	}
	f, err := definition.Load(path, ic.app.passphrase())
	if errors.IsErrorCode(err, errors.ErrNotFound) {
		title := ic.title
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return path, &definition.File{Title: title}, nil
	}
	return path, f, err
}

func (ic *itemsCmd) save(path string, f *definition.File) error {
	return definition.Save(path, f, ic.app.passphrase())
}

func (ic *itemsCmd) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, f, err := ic.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(f.Items) == 0 {
				fmt.Fprintln(out, "No menu items configured")
				return nil
			}

			items := append([]definition.Item(nil), f.Items...)
			sort.SliceStable(items, func(i, j int) bool {
				if items[i].ParentID != items[j].ParentID {
					return items[i].ParentID < items[j].ParentID
				}
				return items[i].Order < items[j].Order
			})

			s := newStyles(out)
			fmt.Fprintln(out, s.paint(s.title, fmt.Sprintf("%-36s %-7s %-5s %-20s %-36s %s", "ID", "Type", "Order", "Label", "Parent", "Updated (UTC)")))
			for _, item := range items {
				fmt.Fprintf(out, "%-36s %-7s %-5d %-20s %-36s %s\n",
					item.ID, item.Type, item.Order, truncate(item.Label, 20), item.ParentID, item.UpdatedUTC)
			}
			return nil
		},
	}
}

func (ic *itemsCmd) addCmd() *cobra.Command {
	flags := &itemFlags{}
	var before string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, f, err := ic.open()
			if err != nil {
				return err
			}

			item := definition.NewItem("")
			if err := flags.apply(cmd.Flags(), &item); err != nil {
				return err
			}
			if before != "" {
				err = f.InsertBefore(item, before)
			} else {
				err = f.Add(item)
			}
			if err != nil {
				return err
			}
			if err := ic.save(path, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added menu item %s of type %s\n", item.ID, item.Type)
			return nil
		},
	}
	flags.register(cmd.Flags(), string(definition.TypeText))
	cmd.Flags().StringVar(&before, "before", "", "insert in front of the item with this id")
	cmd.Flags().StringVar(&ic.title, "title", "", "menu bar title when the file is created")
	return cmd
}

func (ic *itemsCmd) updateCmd() *cobra.Command {
	flags := &itemFlags{}
	var id string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, f, err := ic.open()
			if err != nil {
				return err
			}
			idx := f.Find(id)
			if idx < 0 {
				return errors.Newf(errors.ErrNotFound, "item with id %s not found", id)
			}

			item := f.Items[idx]
			if err := flags.apply(cmd.Flags(), &item); err != nil {
				return err
			}
			if err := f.Update(item); err != nil {
				return err
			}
			if err := ic.save(path, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated menu item %s\n", item.ID)
			return nil
		},
	}
	flags.register(cmd.Flags(), "")
	cmd.Flags().StringVar(&id, "id", "", "identifier of the item to update")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (ic *itemsCmd) deleteCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an item and its submenu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, f, err := ic.open()
			if err != nil {
				return err
			}
			removed, err := f.Delete(id)
			if err != nil {
				return err
			}
			if err := ic.save(path, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted menu item %s (%d removed)\n", id, removed)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "identifier of the item to delete")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
