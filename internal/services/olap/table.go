package olap

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

const (
	// MaxRows caps the rows of one rendered table.
	MaxRows = 20
	// NameWidth is the wrap width of the dish name column.
	NameWidth = 15
)

var headers = [3]string{"Название", "Сумма", "Заказы"}

type tableRow struct {
	name  []string
	sum   string
	count string
}

// RenderCategory draws the top rows by guest count as a box table inside a
// MarkdownV2 code block.
//
// Parameters:
// - rows: the rows of one category
//
// Returns:
// - string: the fenced table, ready to send with MarkdownV2
// - error: ErrNothingFound when rows is empty
func RenderCategory(rows []model.OlapRow) (string, error) {
	if len(rows) == 0 {
		return "", ErrNothingFound
	}

	sorted := make([]model.OlapRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GuestNum > sorted[j].GuestNum
	})
	if len(sorted) > MaxRows {
		sorted = sorted[:MaxRows]
	}

	var widths [3]int
	for i, header := range headers {
		widths[i] = runeLen(header)
	}
	for _, row := range sorted {
		widths[0] = max(widths[0], min(runeLen(row.DishName), NameWidth))
		widths[1] = max(widths[1], runeLen(formatSum(row.DishDiscountSumInt)))
		widths[2] = max(widths[2], runeLen(strconv.FormatUint(uint64(row.GuestNum), 10)))
	}

	wrapWidth := widths[0]
	table := make([]tableRow, 0, len(sorted))
	for _, row := range sorted {
		lines := Wrap(row.DishName, wrapWidth)
		for _, line := range lines {
			widths[0] = max(widths[0], runeLen(line))
		}
		table = append(table, tableRow{
			name:  lines,
			sum:   formatSum(row.DishDiscountSumInt),
			count: strconv.FormatUint(uint64(row.GuestNum), 10),
		})
	}

	var b strings.Builder
	b.WriteString(border(widths, '┌', '┬', '┐'))
	b.WriteString("│")
	for i, header := range headers {
		total := widths[i] + 2
		left := (total - runeLen(header)) / 2
		b.WriteString(strings.Repeat(" ", left))
		b.WriteString(header)
		b.WriteString(strings.Repeat(" ", total-runeLen(header)-left))
		b.WriteString("│")
	}
	b.WriteString("\n")
	b.WriteString(border(widths, '├', '┼', '┤'))

	for idx, row := range table {
		for lineIdx, line := range row.name {
			sum, count := "", ""
			if lineIdx == 0 {
				sum, count = row.sum, row.count
			}
			b.WriteString("│")
			b.WriteString(cell(line, widths[0]))
			b.WriteString(cell(sum, widths[1]))
			b.WriteString(cell(count, widths[2]))
			b.WriteString("\n")
		}
		if idx+1 < len(table) {
			b.WriteString(border(widths, '├', '┼', '┤'))
		}
	}
	b.WriteString(border(widths, '└', '┴', '┘'))

	return "```\n" + escapeCode(b.String()) + "```\n", nil
}

// Wrap splits text greedily at whitespace into lines of at most width runes.
// A word longer than width keeps a line of its own. Blank text yields one
// empty line.
func Wrap(text string, width int) []string {
	var lines []string
	var current strings.Builder
	currentLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := runeLen(word)
		if currentLen > 0 && currentLen+1+wordLen > width {
			lines = append(lines, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	if currentLen > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func border(widths [3]int, left, middle, right rune) string {
	var b strings.Builder
	b.WriteRune(left)
	for i, w := range widths {
		b.WriteString(strings.Repeat("─", w+2))
		if i+1 == len(widths) {
			b.WriteRune(right)
		} else {
			b.WriteRune(middle)
		}
	}
	b.WriteString("\n")
	return b.String()
}

func cell(text string, width int) string {
	return " " + text + strings.Repeat(" ", width+1-runeLen(text)) + "│"
}

func formatSum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// escapeCode escapes the two characters MarkdownV2 reserves inside pre blocks.
func escapeCode(s string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(s)
}
