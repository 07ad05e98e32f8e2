package card

// Tab identifies a card page.
type Tab string

const (
	TabMain     Tab = "main"
	TabSettings Tab = "settings"
	TabWifi     Tab = "wifi"
	TabFuel     Tab = "fuel"
)

var tabOrder = []Tab{TabMain, TabSettings, TabWifi, TabFuel}

var tabTitles = map[Tab]string{
	TabMain:     "Control",
	TabSettings: "Settings",
	TabWifi:     "Wi-Fi",
	TabFuel:     "Fuel",
}

// Tabs returns the tabs in display order.
func Tabs() []Tab {
	return append([]Tab(nil), tabOrder...)
}

// Title returns the tab caption.
func (t Tab) Title() string {
	if s, ok := tabTitles[t]; ok {
		return s
	}
	return string(t)
}

// Valid reports whether t is one of the four tabs.
func (t Tab) Valid() bool {
	_, ok := tabTitles[t]
	return ok
}

// TabState holds the selected tab. The zero value starts on TabMain.
type TabState struct {
	active Tab
}

// Active returns the selected tab.
func (s *TabState) Active() Tab {
	if s.active == "" {
		return TabMain
	}
	return s.active
}

// Select makes t the active tab.
func (s *TabState) Select(t Tab) {
	s.active = t
}

// Next selects the tab after the active one, wrapping around.
func (s *TabState) Next() Tab {
	s.active = tabOrder[(s.index()+1)%len(tabOrder)]
	return s.active
}

// Prev selects the tab before the active one, wrapping around.
func (s *TabState) Prev() Tab {
	s.active = tabOrder[(s.index()-1+len(tabOrder))%len(tabOrder)]
	return s.active
}

func (s *TabState) index() int {
	active := s.Active()
	for i, t := range tabOrder {
		if t == active {
			return i
		}
	}
	return 0
}
