// Package sheet converts wide-format registration spreadsheets into the
// normalized records the rest of the system works with.
package sheet

// Column locates a spreadsheet column by header name, with a positional
// fallback for the known legacy layout. A Fallback of -1 means header-only.
type Column struct {
	Header   string
	Fallback int
}

// BlockOffsets names the position of each field inside one repeated attendee
// block. Offsets are relative to the block start.
type BlockOffsets struct {
	FirstName   int
	LastName    int
	Email       int
	Position    int
	Designation int
	Country     int
	Trainings   int
	Subtotal    int
}

// Layout is the named configuration for a registration sheet: which headers
// carry which field, the group discriminator value, and the shape of the
// repeated attendee block. Group-specific columns sit after all individual
// columns in the source sheet, which is why company appears twice.
type Layout struct {
	Timestamp     Column
	Kind          Column
	FirstName     Column
	LastName      Column
	Email         Column
	Company       Column
	Trainings     Column
	Total         Column
	PaymentOption Column
	Notes         Column
	GroupTotal    Column
	GroupCompany  Column
	AttendeeCount Column

	// GroupValue is the discriminator cell value selecting the group kind;
	// anything else selects individual.
	GroupValue string

	BlockWidth int
	Block      BlockOffsets
}

// DefaultBlockWidth is the number of consecutive columns one attendee block
// occupies in the legacy sheet.
const DefaultBlockWidth = 8

// GroupDiscriminator is the legacy form answer that marks a group row.
const GroupDiscriminator = "Someone Else / Group"

// DefaultLayout matches the registration form's sheet as exported today.
func DefaultLayout() Layout {
	return Layout{
		Timestamp:     Column{Header: "Timestamp", Fallback: 0},
		FirstName:     Column{Header: "First Name", Fallback: 1},
		LastName:      Column{Header: "Last Name", Fallback: 2},
		Email:         Column{Header: "Email Address", Fallback: 3},
		Kind:          Column{Header: "Are you registering yourself or someone else?", Fallback: 4},
		Company:       Column{Header: "Company/Institution", Fallback: 5},
		Trainings:     Column{Header: "Trainings", Fallback: 6},
		Total:         Column{Header: "Total Cost", Fallback: 7},
		PaymentOption: Column{Header: "Payment Option", Fallback: 8},
		Notes:         Column{Header: "Notes", Fallback: 9},
		GroupTotal:    Column{Header: "Group Total", Fallback: 10},
		GroupCompany:  Column{Header: "Company/Institution (Group)", Fallback: 11},
		AttendeeCount: Column{Header: "Number of Attendees", Fallback: 12},
		GroupValue:    GroupDiscriminator,
		BlockWidth:    DefaultBlockWidth,
		Block: BlockOffsets{
			FirstName:   0,
			LastName:    1,
			Email:       2,
			Position:    3,
			Designation: 4,
			Country:     5,
			Trainings:   6,
			Subtotal:    7,
		},
	}
}
