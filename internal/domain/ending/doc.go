// Package ending classifies how a brush stroke was finished from the pressure,
// velocity and direction of its final samples. The three canonical endings are
// tome (a firm stop), hane (a flick where pressure dips then spikes) and harai
// (a taper where pressure fades out while the brush keeps moving).
package ending
