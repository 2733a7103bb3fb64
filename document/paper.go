package document

import "fmt"

// Paper is a standard page size. Ordinals are stable.
type Paper int

const (
	A0Portrait Paper = iota
	A1Portrait
	A2Portrait
	A3Portrait
	A4Portrait
	A5Portrait
	A0Landscape
	A1Landscape
	A2Landscape
	A3Landscape
	A4Landscape
	A5Landscape
	USLetterPortrait
	USLetterLandscape
	USLegalPortrait
	USLegalLandscape
)

// PaperCount is the number of paper sizes.
const PaperCount = 16

func mm(v float64) float64 { return v * 72 / 25.4 }

var isoSizes = [6][2]float64{
	{mm(841), mm(1189)},
	{mm(594), mm(841)},
	{mm(420), mm(594)},
	{mm(297), mm(420)},
	{mm(210), mm(297)},
	{mm(148), mm(210)},
}

// Size returns the width and height in points.
func (p Paper) Size() (float64, float64, error) {
	switch {
	case p >= A0Portrait && p <= A5Portrait:
		s := isoSizes[p-A0Portrait]
		return s[0], s[1], nil
	case p >= A0Landscape && p <= A5Landscape:
		s := isoSizes[p-A0Landscape]
		return s[1], s[0], nil
	case p == USLetterPortrait:
		return 612, 792, nil
	case p == USLetterLandscape:
		return 792, 612, nil
	case p == USLegalPortrait:
		return 612, 1008, nil
	case p == USLegalLandscape:
		return 1008, 612, nil
	}
	return 0, 0, fmt.Errorf("%w: paper %d", ErrBadArgument, int(p))
}
