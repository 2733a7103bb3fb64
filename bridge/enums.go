package bridge

// Ordinals of every enumeration are part of the engine contract.

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

// Permission names a restriction applied when encrypting.
type Permission int

const (
	NoEdit Permission = iota
	NoPrint
	NoCopy
	NoAnnot
	NoForms
	NoExtract
	NoAssemble
	NoHqPrint
)

// EncryptionMethod is a scheme plus whether metadata is encrypted.
type EncryptionMethod int

const (
	PDF40bit EncryptionMethod = iota
	PDF128bit
	AES128bitFalse
	AES128bitTrue
	AES256bitFalse
	AES256bitTrue
	AES256bitISOFalse
	AES256bitISOTrue
)

// NotEncrypted is returned by EncryptionKind for a plain document.
const NotEncrypted EncryptionMethod = -1

type Anchor int

const (
	PosCentre Anchor = iota
	PosLeft
	PosRight
	Top
	TopLeft
	TopRight
	Left
	BottomLeft
	Bottom
	BottomRight
	Right
	Diagonal
	ReverseDiagonal
)

// Font is one of the standard fonts.
type Font int

const (
	TimesRoman Font = iota
	TimesBold
	TimesItalic
	TimesBoldItalic
	Helvetica
	HelveticaBold
	HelveticaOblique
	HelveticaBoldOblique
	Courier
	CourierBold
	CourierOblique
	CourierBoldOblique
)

type Justification int

const (
	LeftJustify Justification = iota
	CentreJustify
	RightJustify
)

type LabelStyle int

const (
	DecimalArabic LabelStyle = iota
	UppercaseRoman
	LowercaseRoman
	UppercaseLetters
	LowercaseLetters
)

// NoLabelNumbering gives labels that are the prefix alone.
const NoLabelNumbering LabelStyle = -1

type Layout int

const (
	SinglePage Layout = iota
	OneColumn
	TwoColumnLeft
	TwoColumnRight
	TwoPageLeft
	TwoPageRight
)

type PageMode int

const (
	UseNone PageMode = iota
	UseOutlines
	UseThumbs
	UseOC
	UseAttachments
)

// LineCap and LineJoin are declared for callers that build content
// streams; no operation takes them yet.
type LineCap int

const (
	ButtCap LineCap = iota
	RoundCap
	SquareCap
)

type LineJoin int

const (
	MiterJoin LineJoin = iota
	RoundJoin
	BevelJoin
)
