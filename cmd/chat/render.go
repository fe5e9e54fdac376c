package main

import (
	"fmt"
	"io"
	"time"

	"chat-client/store"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// render prints the observed ChatState: a colorized status header, the
// last auth error if any, and the message list newest first.
func render(w io.Writer, state store.ChatState) {
	fmt.Fprintln(w, color.New(color.BgBlack, color.FgGreen).Render(statusHeader(state)))

	if state.LastError != nil {
		fmt.Fprintln(w, color.New(color.FgRed).Render("last error: "+state.LastError.Error()))
	}

	if len(state.Messages) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Author", "Message"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, message := range state.Messages {
		author := message.Author
		if message.IsMine {
			author = "you"
		}
		table.Append([]string{
			message.CreatedAt.Format(time.TimeOnly),
			author,
			message.Content,
		})
	}
	table.Render()
}

func statusHeader(state store.ChatState) string {
	switch {
	case state.LoggedIn == nil:
		return "  ====== chat (resolving session) ======"
	case *state.LoggedIn:
		return "  ====== chat (logged in) ======"
	default:
		return "  ====== chat (logged out) ======"
	}
}
