/*
Package rabbitmq provides a RabbitMQ relay for the dispatch registry.
It maps notification forwarding to AMQP, includes an auto-reconnect publisher,
and supports optional header propagation via a mediator.HeaderPropagator.
*/
package rabbitmq
