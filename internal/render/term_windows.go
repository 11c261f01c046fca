package render

func terminalSize() (cols, rows int) {
	return 80, 24
}
