package main

import (
	"chat-session/domain"
	"chat-session/domain/search"
	"chat-session/internal"
	"chat-session/repositories"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// inspect prints the recorded history of a channel, optionally filtered.
// Badger is opened read only but the bluge index is locked, stop the chat first.
func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	channel := flag.String("channel", config.DefaultChannel, "Channel to inspect")
	filterArg := flag.String("filter", "time>0", "History filter (key=word, time>2017-12-08)")
	flag.Parse()

	name, err := domain.CanonicalChannelName(*channel)
	if err != nil {
		log.Fatal(err)
	}
	filter, err := search.ParseFilter(*filterArg)
	if err != nil {
		log.Fatal(err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		log.Fatal("Error while opening Bluge: ", err)
	}
	defer blugeWriter.Close()

	repository := repositories.NewMessageRepository(db, blugeWriter, logs.GetLoggerFromString(config.LogLevel), config.LimitMessages)
	messages, err := repository.GetMessages(context.Background(), name, filter)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Timestamp", "Time", "Nick", "Text"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, message := range messages {
		nick, text := "", string(message.Payload)
		if decoded, err := domain.DecodeMessage(message.Payload, message.At); err == nil {
			if chat, ok := decoded.(domain.ChatMessage); ok {
				nick, text = chat.Nick, chat.Text
			}
		}
		table.Append([]string{
			fmt.Sprint(message.At),
			time.Unix(0, message.At).Local().Format(time.DateTime),
			nick,
			text,
		})
	}
	table.Render()
}
