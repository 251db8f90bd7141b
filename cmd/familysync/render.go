package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/query"
)

func printItems(w io.Writer, items []models.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tCATEGORY\tQTY\tTYPE\tADDED BY")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.Name, item.Location, item.Category, item.Quantity, item.Visibility, item.OwnerName)
	}
	tw.Flush()
}

func printItem(w io.Writer, item models.Item) {
	fmt.Fprintf(w, "#%d %s\n", item.ID, item.Name)
	fmt.Fprintf(w, "  Location:    %s\n", item.Location)
	fmt.Fprintf(w, "  Category:    %s\n", item.Category)
	fmt.Fprintf(w, "  Quantity:    %d\n", item.Quantity)
	if item.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", item.Description)
	}
	fmt.Fprintf(w, "  Type:        %s\n", item.Visibility)
	fmt.Fprintf(w, "  Added by:    %s\n", item.OwnerName)
	if item.Photo != "" {
		fmt.Fprintf(w, "  Photo:       %s\n", item.Photo)
	}
	if item.LastFoundAt != nil {
		fmt.Fprintf(w, "  Last found:  %s\n", item.LastFoundAt.Local().Format(time.DateTime))
	}
}

func printMembers(w io.Writer, members []models.Member) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINITIALS\tROLE")
	for _, m := range members {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.ID, m.Name, m.Initials, m.Role)
	}
	tw.Flush()
}

func printStats(w io.Writer, s query.Stats) {
	fmt.Fprintf(w, "Total items:    %d\n", s.Total)
	fmt.Fprintf(w, "Family items:   %d\n", s.Family)
	fmt.Fprintf(w, "Private items:  %d\n", s.Private)
	fmt.Fprintf(w, "Categories:     %d\n", s.Categories)
}
