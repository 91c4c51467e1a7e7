// Package dsptool integrates the external DSP (ADPCM-family) encoder so
// conversions can produce SON/SNS containers and observe progress updates.
//
// It exposes a Client interface and a CLI implementation that shells out to
// the encoder binary and parses its JSON progress lines. Tests can swap in
// fakes to avoid executing the real encoder while still exercising
// orchestrator behaviour.
package dsptool
