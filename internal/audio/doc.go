// Package audio provides the local sound sinks the client plays earcons,
// alarms, and ringtones through. It uses the beep library to decode WAV,
// OGG, and MP3 files and mixes every sink onto one speaker.
package audio
