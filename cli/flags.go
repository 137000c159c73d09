package cli

var (
	verbose    bool
	configPath string

	// for gesture commands
	screenWidth  float64
	screenHeight float64
	mpvSocket    string
	swipeSteps   int
)
