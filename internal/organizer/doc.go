// Package organizer copies resolved audiobook folders into the final library
// layout: output_root/Author[/Series]/Title. Copies preserve modification
// times and never touch the source folder; collisions at the destination are
// overwritten so repeated runs converge.
package organizer
