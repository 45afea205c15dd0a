/*
Package rsc5 implements RAGE RSC5 resource containers (GTA IV .wtd texture
dictionaries) read/write.

An RSC5 file is a 12-byte header followed by a zlib stream. The stream
inflates to one flat image: the virtual segment (structures, arrays, strings)
followed by the physical segment (pixel data). Objects inside the image refer
to each other through relocatable pointers, a 28-bit offset tagged with the
segment it points into.

The package reads that image into a Resource, exposes the texture dictionary
stored in it, lets callers insert or replace textures, then lays the whole
graph out again into fresh segments and writes the compressed file back.
Pixel payloads are produced with BCn encoding from github.com/woozymasta/bcn.
*/
package rsc5
