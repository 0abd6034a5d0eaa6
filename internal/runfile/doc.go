// Package runfile reads and writes ANR run files, the on-disk container
// for one contiguous run of raw detector events.
//
// An ANR file is little-endian throughout and has three sections:
//
//	header       fixed 36 bytes: magic "ANR4", format version, flight,
//	             run number, event count, channel geometry (phi sectors,
//	             rings, polarizations, samples per trace), sample rate
//	             in GSa/s, and the run start time
//	calibration  per-channel pedestals, per-sample clock offsets (in
//	             fractional samples), and the counts-to-millivolts scale
//	data         eventCount fixed-size records, each holding the event
//	             number, trigger time and type, and the raw ADC counts
//	             for every channel (channel-major, phi > ring > pol)
//
// Records are fixed size, so any event is addressable by index without
// scanning. The event count in the header is finalized when a Writer is
// closed, mirroring how the file is produced incrementally by the DAQ.
package runfile
