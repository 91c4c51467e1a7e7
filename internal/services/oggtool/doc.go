// Package oggtool integrates the external OGG (lossy transform) encoder so
// conversions can produce SON/SNS containers and observe progress updates.
//
// The shape mirrors package dsptool; the one deliberate difference is that the
// OGG back-end has no four-channel option, so none is exposed here.
package oggtool
