package ticketprinter

import (
	"bytes"
	"fmt"
	"strings"

	"curryhouse/internal/domain"
)

// ESC/POS control sequences understood by the kitchen's thermal printer.
var (
	escInit    = []byte{0x1b, 0x40} // initialize
	escBoldOn  = []byte{0x1b, 0x45, 0x01}
	escBoldOff = []byte{0x1b, 0x45, 0x00}
	escCenter  = []byte{0x1b, 0x61, 0x01}
	escLeft    = []byte{0x1b, 0x61, 0x00}
	escCut     = []byte{0x1d, 0x56, 0x42, 0x00} // partial cut with feed
)

const ticketWidth = 32

// RenderTicket builds the raw bytes of a kitchen slip.
func RenderTicket(msg domain.TicketMessage) []byte {
	var buf bytes.Buffer
	buf.Write(escInit)

	buf.Write(escCenter)
	buf.Write(escBoldOn)
	buf.WriteString("KITCHEN TICKET\n")
	buf.Write(escBoldOff)
	buf.WriteString(msg.OrderNumber + "\n")
	if msg.TableNumber != "" {
		buf.WriteString("TABLE " + msg.TableNumber + "\n")
	}
	buf.WriteString(msg.CreatedAt.Format("02 Jan 2006 15:04") + "\n")
	buf.Write(escLeft)
	buf.WriteString(strings.Repeat("-", ticketWidth) + "\n")

	for _, it := range msg.Items {
		buf.WriteString(fmt.Sprintf("%dx %s\n", it.Quantity, it.Name))
		if it.SpiceLevel != "" {
			buf.WriteString("   spice: " + it.SpiceLevel + "\n")
		}
		for _, a := range it.Addons {
			buf.WriteString("   + " + a.Name + "\n")
		}
	}

	buf.WriteString(strings.Repeat("-", ticketWidth) + "\n")
	buf.WriteString(padLine("Subtotal", fmt.Sprintf("%.2f", msg.Subtotal)))
	buf.WriteString(padLine("Tax", fmt.Sprintf("%.2f", msg.Tax)))
	buf.Write(escBoldOn)
	buf.WriteString(padLine("Total", fmt.Sprintf("%.2f", msg.Total)))
	buf.Write(escBoldOff)
	buf.WriteString("\n\n")
	buf.Write(escCut)

	return buf.Bytes()
}

func padLine(label, value string) string {
	gap := ticketWidth - len(label) - len(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value + "\n"
}
