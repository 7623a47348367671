/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package main

import (
	"time"

	"github.com/tryfix/log"
	"github.com/tryfix/multiserde"
)

func main() {

	// connect both dispatchers to the registry over its REST api
	conn := multiserde.Connection{
		BaseURL: `http://localhost:9092/v1`,
		Timeout: 5 * time.Second,
	}

	serializer, err := multiserde.NewSerializer(`orders`, multiserde.FromConnection(conn),
		multiserde.WithAutoCreateGroup(),
		multiserde.WithAutoRegisterSchemas(),
		multiserde.WithLogger(log.NewLog().Log()),
	)
	if err != nil {
		log.Fatal(err)
	}

	deserializer, err := multiserde.NewDeserializer(`orders`, multiserde.FromConnection(conn),
		multiserde.WithLogger(log.NewLog().Log()),
	)
	if err != nil {
		log.Fatal(err)
	}

	deserializer.Watch(30 * time.Second)
	defer deserializer.Close()

	type Order struct {
		Id   int64  `avro:"id"`
		Name string `avro:"name"`
	}

	ws, err := multiserde.AvroOf(`{
		"type": "record",
		"name": "Order",
		"namespace": "com.example",
		"fields": [
			{"name": "id", "type": "long"},
			{"name": "name", "type": "string"}
		]
	}`, Order{Id: 1, Name: `a`})
	if err != nil {
		log.Fatal(err)
	}

	payload, err := serializer.Serialize(ws)
	if err != nil {
		log.Fatal(err)
	}

	ev, err := deserializer.Deserialize(payload)
	if err != nil {
		log.Fatal(err)
	}

	log.Info(`event decoded`, ev)

	deserializer.Print()
}
