package club

// Query text for the club-management GraphQL API. The schema is owned
// upstream; only the fields this backend forwards are selected.

const loginQuery = `
mutation Login($login: String!, $password: String!) {
  login(login: $login, password: $password) {
    accessToken
    user {
      id
      login
      nickname
      phone
      deposit
      bonus
    }
  }
}`

const bookingsQuery = `
query Bookings {
  bookings {
    id
    host { id name zone }
    startsAt
    endsAt
    status
    comment
  }
}`

const createBookingQuery = `
mutation CreateBooking($input: BookingInput!) {
  createBooking(input: $input) {
    id
    host { id name zone }
    startsAt
    endsAt
    status
  }
}`

const hostsQuery = `
query Hosts {
  hosts {
    id
    name
    zone
    specs
    pricePerHour
    available
  }
}`

const paymentsQuery = `
query Payments {
  payments {
    id
    amount
    kind
    createdAt
  }
}`

const leaderboardQuery = `
query Leaderboard {
  leaderboard {
    position
    nickname
    hoursPlayed
    score
  }
}`
