package inference

import "image"

// PrepareInput converts a square canvas into the CHW float32 tensor layout the
// model expects, with pixel values scaled to [0, 1].
//
// Arguments:
//   - canvas: The letterboxed square image, side length = targetSize.
//   - targetSize: The model's input side length in pixels.
//
// Returns:
//   - []float32: A buffer of length 3*targetSize*targetSize, channels first.
func PrepareInput(canvas image.Image, targetSize int) []float32 {
	channelSize := targetSize * targetSize
	data := make([]float32, 3*channelSize)
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	min := canvas.Bounds().Min
	i := 0
	for y := 0; y < targetSize; y++ {
		for x := 0; x < targetSize; x++ {
			r, g, b, _ := canvas.At(min.X+x, min.Y+y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return data
}
