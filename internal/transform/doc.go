// Package transform invokes the external audio tool to pitch-shift artifacts.
//
// A transform parameter in [0,100] maps linearly onto a semitone offset in
// [-4,+4]; the equal-tempered ratio 2^(s/12) then drives an
// asetrate/aresample filter pair that shifts pitch without changing tempo.
// Parameter 50 is neutral and copies bytes untouched.
//
// Invocations are bounded by a wall-clock timeout and the process is killed
// on expiry. Failed runs always remove their output file.
package transform
