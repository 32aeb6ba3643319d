package models

// Theme is the sidebar color scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Opposite returns the other theme
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether t is one of the two known themes
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
