package command

// namedColor pairs a spoken color name with its RGB value.
type namedColor struct {
	name string
	rgb  RGB
}

// defaultColorTable is scanned in order; the first entry whose name is a
// substring of the transcript wins. Multi-word names precede the single-word
// names they contain so that "dark blue" is not shadowed by "blue".
var defaultColorTable = []namedColor{
	{"light blue", RGB{R: 173, G: 216, B: 230}},
	{"dark blue", RGB{R: 0, G: 0, B: 139}},
	{"light green", RGB{R: 144, G: 238, B: 144}},
	{"dark green", RGB{R: 0, G: 100, B: 0}},
	{"light gray", RGB{R: 211, G: 211, B: 211}},
	{"dark gray", RGB{R: 169, G: 169, B: 169}},
	{"red", RGB{R: 255, G: 0, B: 0}},
	{"green", RGB{R: 0, G: 128, B: 0}},
	{"blue", RGB{R: 0, G: 0, B: 255}},
	{"yellow", RGB{R: 255, G: 255, B: 0}},
	{"orange", RGB{R: 255, G: 165, B: 0}},
	{"purple", RGB{R: 128, G: 0, B: 128}},
	{"pink", RGB{R: 255, G: 192, B: 203}},
	{"brown", RGB{R: 165, G: 42, B: 42}},
	{"white", RGB{R: 255, G: 255, B: 255}},
	{"black", RGB{R: 0, G: 0, B: 0}},
	{"gray", RGB{R: 128, G: 128, B: 128}},
}
