package filters

import (
	"errors"

	"github.com/wudi/pdfbridge/ir/raw"
)

// applyPredictor reverses a TIFF (2) or PNG (>= 10) predictor described by params.
func applyPredictor(data []byte, params raw.Dictionary) ([]byte, error) {
	d, ok := params.(*raw.DictObj)
	if !ok || d == nil {
		return data, nil
	}
	predictor, _ := d.IntValue("Predictor")
	if predictor <= 1 {
		return data, nil
	}
	colors := intOr(d, "Colors", 1)
	bpc := intOr(d, "BitsPerComponent", 8)
	columns := intOr(d, "Columns", 1)
	bpp := (colors*bpc + 7) / 8
	rowLen := (colors*bpc*columns + 7) / 8
	if rowLen <= 0 {
		return nil, errors.New("invalid predictor row length")
	}

	if predictor == 2 {
		if bpc != 8 {
			return data, nil
		}
		out := append([]byte(nil), data...)
		for row := 0; row+rowLen <= len(out); row += rowLen {
			for i := bpp; i < rowLen; i++ {
				out[row+i] += out[row+i-bpp]
			}
		}
		return out, nil
	}

	out := make([]byte, 0, len(data))
	prev := make([]byte, rowLen)
	for pos := 0; pos < len(data); pos += rowLen + 1 {
		ft := data[pos]
		end := pos + 1 + rowLen
		if end > len(data) {
			end = len(data)
		}
		cur := make([]byte, rowLen)
		copy(cur, data[pos+1:end])
		for i := 0; i < rowLen; i++ {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch ft {
			case 0:
			case 1:
				cur[i] += left
			case 2:
				cur[i] += up
			case 3:
				cur[i] += byte((int(left) + int(up)) / 2)
			case 4:
				cur[i] += paeth(left, up, upLeft)
			default:
				return nil, errors.New("invalid PNG predictor filter type")
			}
		}
		out = append(out, cur[:end-pos-1]...)
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func intOr(d *raw.DictObj, key string, def int) int {
	if v, ok := d.IntValue(key); ok {
		return int(v)
	}
	return def
}
