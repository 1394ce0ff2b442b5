package trilevel

import "image"

// OtsuThreshold derives a black/white split point from the luminance
// histogram of img with Otsu's method: the candidate that maximizes the
// variance between the dark and light populations wins.
// https://en.wikipedia.org/wiki/Otsu%27s_method
//
// The result can be used as Thresholds.Black when a fixed threshold clips
// too much or too little of the image.
func OtsuThreshold(img image.Image) uint8 {
	var histo [256]int
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			histo[luminance(rgb8(img.At(x, y)))]++
		}
	}

	total := img.Bounds().Dx() * img.Bounds().Dy()
	var totalSum int
	for lum, n := range histo {
		totalSum += lum * n
	}

	var (
		best         uint8
		bestVariance int

		// Pixel count and weighted luminance sum at or below the
		// candidate split.
		darkPixels int
		darkSum    int
	)
	for split, n := range histo {
		darkPixels += n
		darkSum += split * n

		lightPixels := total - darkPixels
		lightSum := totalSum - darkSum

		// A one-sided split has no second mean to separate from.
		if darkPixels == 0 || lightPixels == 0 {
			continue
		}

		diff := darkSum/darkPixels - lightSum/lightPixels
		variance := darkPixels * lightPixels * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			best = uint8(split)
		}
	}

	return best
}
