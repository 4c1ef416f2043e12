package sample

// Unit type words per level, used to name generated org units. Levels past
// the end of the list reuse the last entry.
var levelWords = [][]string{
	{"Holdings", "Group", "Corporation", "Pty Ltd"},
	{"Operations", "Finance", "Technology", "Sales", "Supply Chain", "People & Culture"},
	{"Division", "Region", "Services", "Programme"},
	{"Branch", "Centre", "Office", "Practice"},
	{"Department", "Unit", "Function"},
	{"Section", "Stream", "Desk"},
	{"Team", "Squad", "Cell", "Crew"},
}

var regions = []string{
	"North", "South", "East", "West", "Central", "Metro", "Regional",
	"Pacific", "Coastal", "Inland",
}
