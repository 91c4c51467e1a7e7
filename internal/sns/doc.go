// Package sns reads beat-marker tables out of existing SON/SNS game-audio
// containers so their timing can be reused for new conversions. It understands
// just enough of the chunk layout to locate the table; everything else in the
// container is opaque to this tool.
package sns
