// Package imagestats measures how well a cipher hides an image.
//
// All functions take an interleaved pixel buffer and its [cipher.Shape]
// and are pure: Shannon entropy, adjacent-pixel correlation, histograms,
// basic statistics, MSE/PSNR/SSIM between two images, salt and pepper
// noise resistance and the key-space estimate. [Analyze] combines them
// into a [Report].
package imagestats
