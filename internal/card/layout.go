package card

import "github.com/jask/webastocard/internal/hass"

// RowKind says how a row is rendered.
type RowKind int

const (
	RowSensor RowKind = iota
	RowBinary
	RowNumber
	RowButton
)

// ButtonStyle is the colour role of a button row.
type ButtonStyle string

const (
	ButtonPrimary ButtonStyle = "primary"
	ButtonDark    ButtonStyle = "dark"
	ButtonDanger  ButtonStyle = "danger"
)

// Row is one line of a section, fully formatted.
type Row struct {
	Kind  RowKind
	Slug  string
	Label string
	Value Display

	// number rows
	Number  float64
	HasNum  bool
	Bounds  Bounds
	Unit    string
	Percent bool

	// button rows
	Style   ButtonStyle
	Enabled bool
}

// Section groups rows under a heading. Title may be empty.
type Section struct {
	Title string
	Rows  []Row
}

type rowSpec struct {
	kind  RowKind
	slug  string
	label string
	unit  string
	mode  BinaryMode
	style ButtonStyle
}

type sectionSpec struct {
	title string
	rows  []rowSpec
}

func sensor(slug, label, unit string) rowSpec {
	return rowSpec{kind: RowSensor, slug: slug, label: label, unit: unit}
}

func binary(slug, label string, mode BinaryMode) rowSpec {
	return rowSpec{kind: RowBinary, slug: slug, label: label, mode: mode}
}

func number(slug, label, unit string) rowSpec {
	return rowSpec{kind: RowNumber, slug: slug, label: label, unit: unit}
}

func button(slug, label string, style ButtonStyle) rowSpec {
	return rowSpec{kind: RowButton, slug: slug, label: label, style: style}
}

var layouts = map[Tab][]sectionSpec{
	TabMain: {
		{title: "Current status", rows: []rowSpec{
			sensor(SensorExhaustTemp, "Exhaust temperature", "°C"),
			sensor(SensorFanSpeed, "Fan speed", "%"),
			sensor(SensorFuelRateHz, "Fuel rate", " Hz"),
			binary(BinaryGlowPlug, "Glow plug", BinaryEnabled),
			sensor(SensorBurnMode, "Burn mode", ""),
			sensor(SensorStartAttempt, "Start attempt", ""),
			binary(BinaryFailure, "Failure", BinaryYesNo),
			sensor(SensorCurrentStateText, "Current mode", ""),
			binary(BinaryFuelPumping, "Fuel pumping", BinaryYesNo),
		}},
		{title: "Control", rows: []rowSpec{
			button(ButtonToggleBurn, "", ButtonPrimary),
			// mode up steps towards LOW, so it lowers the output
			button(ButtonModeUp, "Decrease", ButtonPrimary),
			button(ButtonModeDown, "Increase", ButtonPrimary),
			button(ButtonFuelPump, "Prime fuel", ButtonDark),
			button(ButtonClearFailure, "Clear failure", ButtonDanger),
		}},
	},
	TabSettings: {
		{title: "Heater temperatures", rows: []rowSpec{
			number(NumberTargetTemp, "Target", "°C"),
			number(NumberMinTemp, "Minimum", "°C"),
			number(NumberOverheatTemp, "Overheat", "°C"),
			number(NumberWarningTemp, "Warning", "°C"),
		}},
		{title: "System", rows: []rowSpec{
			number(NumberPumpSize, "Pump size", ""),
			number(NumberMaxFanPWM, "Max fan PWM", ""),
			number(NumberGlowBrightness, "Glow brightness", ""),
			number(NumberGlowFadeIn, "Glow fade-in", " ms"),
			number(NumberGlowFadeOut, "Glow fade-out", " ms"),
		}},
		{rows: []rowSpec{
			button(ButtonSaveSettings, "Save", ButtonPrimary),
			button(ButtonResetSettings, "Reset", ButtonDanger),
			button(ButtonLoadSettings, "Load", ButtonDark),
		}},
		{title: "Logging", rows: []rowSpec{
			binary(BinaryLogging, "Logging", BinaryEnabled),
			button(ButtonLoggingOn, "Enable", ButtonDark),
			button(ButtonLoggingOff, "Disable", ButtonDark),
		}},
	},
	TabWifi: {
		{title: "Wi-Fi", rows: []rowSpec{
			binary(BinaryWifiConnected, "Connection", BinaryActive),
			sensor(SensorWifiSSID, "SSID", ""),
			sensor(SensorWifiIP, "IP address", ""),
		}},
		{rows: []rowSpec{
			button(ButtonResetWifi, "Reset Wi-Fi", ButtonDanger),
			button(ButtonRebootESP, "Reboot ESP", ButtonDark),
		}},
	},
	TabFuel: {
		{title: "Fuel consumption", rows: []rowSpec{
			sensor(SensorFuelConsumed, "Consumed", " L"),
			sensor(SensorFuelPerHour, "Hourly rate", " L/h"),
		}},
		{rows: []rowSpec{
			button(ButtonResetFuel, "Reset consumption", ButtonDanger),
		}},
	},
}

// Sections builds the view model of a tab from the current mapping. Invalid
// tabs render as the main tab.
func (c *Card) Sections(t Tab) []Section {
	specs, ok := layouts[t]
	if !ok {
		specs = layouts[TabMain]
	}
	out := make([]Section, 0, len(specs))
	for _, ss := range specs {
		sec := Section{Title: ss.title, Rows: make([]Row, 0, len(ss.rows))}
		for _, rs := range ss.rows {
			sec.Rows = append(sec.Rows, c.row(rs))
		}
		out = append(out, sec)
	}
	return out
}

func (c *Card) row(rs rowSpec) Row {
	row := Row{Kind: rs.kind, Slug: rs.slug, Label: rs.label, Unit: rs.unit}
	switch rs.kind {
	case RowSensor:
		text := FormatSensor(rs.slug, c.entities.Get(KindSensor, rs.slug))
		if text != Unknown {
			text += rs.unit
		}
		row.Value = Display{Text: text, Tone: ToneNeutral}
	case RowBinary:
		row.Value = FormatBinary(c.entities.Get(KindBinarySensor, rs.slug), rs.mode)
	case RowNumber:
		r := c.entities.Get(KindNumber, rs.slug)
		row.Bounds = NumberBounds(r)
		row.Number, row.HasNum = NumberValue(r)
		row.Percent = percentSlugs[rs.slug]
		row.Value = Display{Text: FormatNumber(rs.slug, r, rs.unit), Tone: ToneNeutral}
	case RowButton:
		r := c.entities.Get(KindButton, rs.slug)
		row.Style = rs.style
		row.Enabled = ButtonEnabled(r, c.HostAttached())
		if rs.slug == ButtonToggleBurn {
			row.Label = "Turn on"
			if c.entities.Get(KindBinarySensor, BinaryBurning).State() == hass.StateOn {
				row.Label = "Turn off"
			}
		}
	}
	return row
}
