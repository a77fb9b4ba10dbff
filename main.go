package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/gitarent/wildmidi/mus"
	"github.com/gitarent/wildmidi/wad"
)

var trackNameTransformer transform.Transformer

func readScore(filename, lump string) (data []byte, lumpName string, err error) {
	data, err = os.ReadFile(filename)
	if err != nil {
		return nil, "", err
	}
	if len(data) < 4 || (string(data[:4]) != "IWAD" && string(data[:4]) != "PWAD") {
		return data, "", nil
	}

	a, err := wad.Open(filename)
	if err != nil {
		return nil, "", err
	}
	defer a.Close()

	if lump == "" {
		names, err := a.MusicLumps()
		if err != nil {
			return nil, "", err
		}
		if len(names) == 0 {
			return nil, "", fmt.Errorf("no music lumps in %s", filename)
		}
		lump = names[0]
	}
	data, err = a.Lump(lump)
	if err != nil {
		return nil, "", err
	}
	return data, lump, nil
}

func printInfo(data []byte) error {
	h, err := mus.DecodeHeader(data)
	if err != nil {
		return err
	}
	patches, err := mus.Instruments(data)
	if err != nil {
		return err
	}
	fmt.Printf("score: %d bytes at offset %d\n", h.ScoreLen, h.ScoreStart)
	fmt.Printf("channels: %d primary, %d secondary\n", h.Channels, h.SecChannels)
	fmt.Printf("instruments: %v\n", patches)
	return nil
}

func main() {
	cs := flag.String("charset", "UTF-8", "charset of the track name meta event in the output midi file")
	name := flag.String("name", "", "track name to embed in the output midi file")
	lump := flag.String("lump", "", "lump to convert when the input is a wad archive")
	info := flag.Bool("info", false, "print score information instead of converting")
	flag.Parse()

	e, _ := charset.Lookup(*cs)
	if e == nil {
		log.Fatalf("unknown charset %q", *cs)
	}
	trackNameTransformer = e.NewEncoder()

	if flag.NArg() == 0 {
		fmt.Println(`mus2mid
=======

This is a DMX MUS to MIDI converter.
The input may be a raw MUS lump or a WAD archive containing one.

mus2mid [-lump=D_E1M1] [-name=title] [-charset=UTF-8] infile [outfile]`)
		flag.Usage()
		return
	}
	infile := flag.Arg(0)
	data, lumpName, err := readScore(infile, *lump)
	if err != nil {
		log.Fatal(err)
	}

	if *info {
		if err := printInfo(data); err != nil {
			log.Fatal(err)
		}
		return
	}

	conv := &mus.Converter{
		TrackName:            *name,
		TrackNameTransformer: trackNameTransformer,
	}
	if conv.TrackName == "" {
		conv.TrackName = lumpName
	}
	buf, err := conv.Convert(data)
	if err != nil {
		log.Fatal(err)
	}

	var outfile string
	if flag.NArg() >= 2 {
		outfile = flag.Arg(1)
	} else {
		outfile = infile + ".mid"
	}
	if err := os.WriteFile(outfile, buf, 0644); err != nil {
		log.Fatal(err)
	}
}
