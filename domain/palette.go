package domain

import "github.com/samber/lo"

// CardColors is the fixed palette a message card colour is drawn from.
var CardColors = []string{
	"#FF2E88", // neon pink
	"#FF6FB5", // soft magenta
	"#FF4081", // pink
	"#E91E63", // deep pink
	"#FF1744", // hot pink
	"#F50057", // bright pink
	"#C51162", // dark pink
}

// RandomCardColor picks a palette entry uniformly at random.
func RandomCardColor() string {
	return lo.Sample(CardColors)
}

func IsCardColor(c string) bool {
	return lo.Contains(CardColors, c)
}
